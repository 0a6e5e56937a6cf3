package rest

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/storefront/internal/common"
	"github.com/dmitrijs2005/storefront/internal/server/models"
	"github.com/dmitrijs2005/storefront/internal/server/services"
)

const maxBodyBytes = 1 << 20

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return common.Invalid("Invalid request body")
	}
	return nil
}

func int64Param(raw, name string) (int64, error) {
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, common.Invalid(name + " must be an integer")
	}
	return v, nil
}

func queryInt64(r *http.Request, name string) (int64, error) {
	return int64Param(r.URL.Query().Get(name), name)
}

func queryString(r *http.Request, name string) (string, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return "", common.Invalid(name + " is required")
	}
	return v, nil
}

// categories

func (s *HTTPServer) listCategories(w http.ResponseWriter, r *http.Request, id models.Identity) {
	list, err := s.categories.List(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, list.Payload())
}

func (s *HTTPServer) createCategory(w http.ResponseWriter, r *http.Request, id models.Identity) {
	var in services.CategoryInput
	if err := decodeBody(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := s.categories.Create(r.Context(), id, in); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeTransaction(w, r, http.StatusCreated, "Successful")
}

func (s *HTTPServer) updateCategory(w http.ResponseWriter, r *http.Request, id models.Identity) {
	categoryID, err := queryInt64(r, "category_id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var in services.CategoryInput
	if err := decodeBody(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.categories.Update(r.Context(), id, categoryID, in); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeTransaction(w, r, http.StatusOK, "Category update is successful")
}

func (s *HTTPServer) deleteCategory(w http.ResponseWriter, r *http.Request, id models.Identity) {
	categoryID, err := queryInt64(r, "category_id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.categories.Delete(r.Context(), id, categoryID); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeTransaction(w, r, http.StatusOK, "Category delete is successful")
}

// products

func (s *HTTPServer) listProducts(w http.ResponseWriter, r *http.Request, id models.Identity) {
	list, err := s.products.List(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, list.Payload())
}

func (s *HTTPServer) createProduct(w http.ResponseWriter, r *http.Request, id models.Identity) {
	var in services.ProductInput
	if err := decodeBody(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := s.products.Create(r.Context(), id, in); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeTransaction(w, r, http.StatusCreated, "Successful")
}

func (s *HTTPServer) productsByCategory(w http.ResponseWriter, r *http.Request) {
	products, err := s.products.ByCategory(r.Context(), r.PathValue("category_slug"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, products)
}

func (s *HTTPServer) productDetail(w http.ResponseWriter, r *http.Request) {
	p, err := s.products.Detail(r.Context(), r.PathValue("product_slug"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, p)
}

func (s *HTTPServer) updateProduct(w http.ResponseWriter, r *http.Request, id models.Identity) {
	var in services.ProductInput
	if err := decodeBody(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.products.Update(r.Context(), id, r.PathValue("product_slug"), in); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeTransaction(w, r, http.StatusOK, "Product update is successful")
}

func (s *HTTPServer) deleteProduct(w http.ResponseWriter, r *http.Request, id models.Identity) {
	slug, err := queryString(r, "product_slug")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.products.Delete(r.Context(), id, slug); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeTransaction(w, r, http.StatusOK, "Product delete is successful")
}

// reviews

func (s *HTTPServer) listReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := s.reviews.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, reviews)
}

func (s *HTTPServer) productReviews(w http.ResponseWriter, r *http.Request) {
	productID, err := int64Param(r.PathValue("product_id"), "product_id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	reviews, err := s.reviews.ByProduct(r.Context(), productID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, reviews)
}

func (s *HTTPServer) addReview(w http.ResponseWriter, r *http.Request, id models.Identity) {
	var in services.ReviewInput
	if err := decodeBody(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := s.reviews.Add(r.Context(), id, in); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeTransaction(w, r, http.StatusCreated, "Successful")
}

func (s *HTTPServer) deleteReview(w http.ResponseWriter, r *http.Request, id models.Identity) {
	ratingID, err := queryInt64(r, "rating_id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.reviews.Delete(r.Context(), id, ratingID); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeTransaction(w, r, http.StatusOK, "Successful")
}
