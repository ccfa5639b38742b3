// Package view renders server-side HTML fragments for the storefront. Each
// view subscribes to a cart and re-renders its fragment whenever the cart
// changes, so handlers only ever serve the cached output.
package view

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"sync"

	"github.com/Deko-Hussein/Hami-mini-market-week-3/internal/domain"
)

var funcs = template.FuncMap{
	"money": func(v float64) string {
		return fmt.Sprintf("$%.2f", v)
	},
}

type cartData struct {
	Items     []domain.LineItem
	ItemCount int
	Subtotal  float64
	Tax       float64
	Discount  float64
	Total     float64
}

func dataFor(cart *domain.Cart) cartData {
	snap := cart.Snapshot()
	return cartData{
		Items:     snap.Items,
		ItemCount: cart.ItemCount(),
		Subtotal:  snap.Subtotal,
		Tax:       snap.Tax,
		Discount:  snap.Discount,
		Total:     snap.Total,
	}
}

// view holds a parsed template and the last rendered fragment.
type view struct {
	mu     sync.RWMutex
	tmpl   *template.Template
	html   string
	logger *slog.Logger
}

func newView(name, text string, logger *slog.Logger) *view {
	return &view{
		tmpl:   template.Must(template.New(name).Funcs(funcs).Parse(text)),
		logger: logger,
	}
}

// Render re-renders the fragment from the cart's current state. It matches
// domain.Listener so it can be subscribed directly. A template failure keeps
// the previous fragment.
func (v *view) Render(cart *domain.Cart) {
	var buf bytes.Buffer
	if err := v.tmpl.Execute(&buf, dataFor(cart)); err != nil {
		v.logger.Error("render view failed",
			slog.String("view", v.tmpl.Name()),
			slog.String("error", err.Error()),
		)
		return
	}

	v.mu.Lock()
	v.html = buf.String()
	v.mu.Unlock()
}

// HTML returns the last rendered fragment.
func (v *view) HTML() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.html
}

const headerTemplate = `<div class="cart-dropdown">
  <span class="cart-count">{{.ItemCount}}</span>
  {{if .Items}}<ul class="cart-items">
    {{range .Items}}<li class="cart-item">
      {{if .Image}}<img src="{{.Image}}" alt="{{.Name}}">{{end}}
      <span class="item-name">{{.Name}}</span>
      <span class="item-qty">x{{.Quantity}}</span>
      <span class="item-price">{{money .Price}}</span>
    </li>
    {{end}}</ul>
  <div class="cart-total">Total: <strong>{{money .Total}}</strong></div>
  {{else}}<p class="cart-empty">Your cart is empty</p>
  {{end}}</div>
`

const orderTemplate = `<section class="order-summary">
  {{if .Items}}<table class="order-items">
    <tbody>
      {{range .Items}}<tr>
        <td class="item-name">{{.Name}}</td>
        <td class="item-qty">{{.Quantity}}</td>
        <td class="item-price">{{money .Price}}</td>
      </tr>
      {{end}}</tbody>
  </table>
  <dl class="order-totals">
    <dt>Subtotal</dt><dd>{{money .Subtotal}}</dd>
    <dt>Tax</dt><dd>{{money .Tax}}</dd>
    {{if gt .Discount 0.0}}<dt>Discount</dt><dd>-{{money .Discount}}</dd>
    {{end}}<dt>Total</dt><dd class="order-total">{{money .Total}}</dd>
  </dl>
  {{else}}<p class="cart-empty">Your cart is empty</p>
  {{end}}</section>
`

// HeaderView renders the cart dropdown shown in the page header.
type HeaderView struct {
	*view
}

// NewHeaderView creates the header dropdown view.
func NewHeaderView(logger *slog.Logger) *HeaderView {
	return &HeaderView{view: newView("header", headerTemplate, logger)}
}

// OrderView renders the order page summary with the full price breakdown.
type OrderView struct {
	*view
}

// NewOrderView creates the order page view.
func NewOrderView(logger *slog.Logger) *OrderView {
	return &OrderView{view: newView("order", orderTemplate, logger)}
}
