// Package rest exposes the storefront services over HTTP.
package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/storefront/internal/logging"
	"github.com/dmitrijs2005/storefront/internal/server/services"
)

type HTTPServer struct {
	address    string
	categories *services.CategoryService
	products   *services.ProductService
	reviews    *services.ReviewService
	logger     logging.Logger
	jwtSecret  []byte
}

func NewHTTPServer(a string, l logging.Logger, cs *services.CategoryService, ps *services.ProductService,
	rs *services.ReviewService, secretKey string) *HTTPServer {
	return &HTTPServer{
		address:    a,
		logger:     l.With("module", "http_server"),
		categories: cs,
		products:   ps,
		reviews:    rs,
		jwtSecret:  []byte(secretKey),
	}
}

// Handler returns the routed handler with request id and access logging.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /categories/{$}", s.authed(s.listCategories))
	mux.HandleFunc("POST /categories/{$}", s.authed(s.createCategory))
	mux.HandleFunc("PUT /categories/{$}", s.authed(s.updateCategory))
	mux.HandleFunc("DELETE /categories/{$}", s.authed(s.deleteCategory))

	mux.HandleFunc("GET /products/{$}", s.authed(s.listProducts))
	mux.HandleFunc("POST /products/{$}", s.authed(s.createProduct))
	mux.HandleFunc("DELETE /products/{$}", s.authed(s.deleteProduct))
	mux.HandleFunc("GET /products/{category_slug}/{$}", s.productsByCategory)
	mux.HandleFunc("GET /products/detail/{product_slug}", s.productDetail)
	mux.HandleFunc("PUT /products/detail/{product_slug}", s.authed(s.updateProduct))

	mux.HandleFunc("GET /review_rating/{$}", s.listReviews)
	mux.HandleFunc("GET /review_rating/{product_id}", s.productReviews)
	mux.HandleFunc("POST /review_rating/{$}", s.authed(s.addReview))
	mux.HandleFunc("DELETE /review_rating/{$}", s.authed(s.deleteReview))

	return s.requestID(s.accessLog(mux))
}

func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
