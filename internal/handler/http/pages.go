package http

import (
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Deko-Hussein/Hami-mini-market-week-3/internal/domain"
	"github.com/Deko-Hussein/Hami-mini-market-week-3/internal/service"
	"github.com/Deko-Hussein/Hami-mini-market-week-3/internal/session"
)

const storefrontPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>Hami Mini Market</title>
  <link rel="stylesheet" href="/static/styles.css">
</head>
<body>
<header>
  <h1>Hami Mini Market</h1>
  {{.Header}}
</header>
<main>
  <form class="catalog-filters" method="get" action="/">
    <input type="search" name="search" placeholder="Search products" value="{{.Search}}">
    <select name="category">
      <option value="all">All categories</option>
      {{range .Categories}}<option value="{{.}}"{{if eq . $.Category}} selected{{end}}>{{.}}</option>
      {{end}}</select>
    <input type="number" name="max_price" min="0" step="0.01" placeholder="Max price"{{if .MaxPrice}} value="{{.MaxPrice}}"{{end}}>
    <button type="submit">Filter</button>
  </form>
  <ul class="product-grid">
    {{range .Products}}<li class="product-card" data-product-id="{{.ID}}">
      {{if .Image}}<img src="{{.Image}}" alt="{{.Name}}">{{end}}
      <h2>{{.Name}}</h2>
      <p class="product-price">{{printf "$%.2f" .Price}}</p>
      <button class="add-to-cart" data-id="{{.ID}}" data-name="{{.Name}}" data-price="{{.Price}}" data-image="{{.Image}}">Add to cart</button>
    </li>
    {{else}}<li class="no-products">No products match your filters.</li>
    {{end}}</ul>
</main>
<script src="/static/storefront.js"></script>
</body>
</html>
`

const orderPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>Your Order - Hami Mini Market</title>
  <link rel="stylesheet" href="/static/styles.css">
</head>
<body>
<header>
  <h1><a href="/">Hami Mini Market</a></h1>
  {{.Header}}
</header>
<main>
  <h2>Your Order</h2>
  {{.Order}}
  <form method="post" action="/api/v1/cart/checkout">
    <button class="checkout" type="submit">Confirm order</button>
  </form>
</main>
<script src="/static/storefront.js"></script>
</body>
</html>
`

// PageHandler serves the server-rendered storefront pages.
type PageHandler struct {
	sessions   *session.Manager
	service    *service.StorefrontService
	storefront *template.Template
	order      *template.Template
	logger     *slog.Logger
}

// NewPageHandler creates the page handler.
func NewPageHandler(sessions *session.Manager, svc *service.StorefrontService, logger *slog.Logger) *PageHandler {
	return &PageHandler{
		sessions:   sessions,
		service:    svc,
		storefront: template.Must(template.New("storefront").Parse(storefrontPage)),
		order:      template.Must(template.New("order").Parse(orderPage)),
		logger:     logger,
	}
}

type storefrontData struct {
	Header     template.HTML
	Products   []domain.Product
	Categories []string
	Search     string
	Category   string
	MaxPrice   string
}

type orderData struct {
	Header template.HTML
	Order  template.HTML
}

// Storefront handles GET /, the catalog page with filters and the header cart.
func (h *PageHandler) Storefront(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionIDFromContext(r.Context())
	if !ok {
		http.Error(w, "session required", http.StatusBadRequest)
		return
	}
	sess := h.sessions.Get(r.Context(), sid)

	q := r.URL.Query()
	search := q.Get("search")
	category := q.Get("category")
	maxPriceRaw := q.Get("max_price")

	var maxPrice float64
	if maxPriceRaw != "" {
		// Unparseable values fall back to unfiltered rather than erroring
		// a whole page render.
		maxPrice, _ = strconv.ParseFloat(maxPriceRaw, 64)
	}

	data := storefrontData{
		Header:     template.HTML(sess.Header.HTML()),
		Products:   h.service.FilterCatalog(search, category, maxPrice),
		Categories: h.service.Categories(),
		Search:     search,
		Category:   category,
		MaxPrice:   maxPriceRaw,
	}

	h.renderPage(w, r, h.storefront, data)
}

// Order handles GET /order, the order summary page.
func (h *PageHandler) Order(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionIDFromContext(r.Context())
	if !ok {
		http.Error(w, "session required", http.StatusBadRequest)
		return
	}
	sess := h.sessions.Get(r.Context(), sid)

	data := orderData{
		Header: template.HTML(sess.Header.HTML()),
		Order:  template.HTML(sess.Order.HTML()),
	}

	h.renderPage(w, r, h.order, data)
}

func (h *PageHandler) renderPage(w http.ResponseWriter, r *http.Request, tmpl *template.Template, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		h.logger.ErrorContext(r.Context(), "render page failed",
			slog.String("page", tmpl.Name()),
			slog.String("error", err.Error()),
		)
	}
}
