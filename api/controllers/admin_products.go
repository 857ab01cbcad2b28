package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/its27-backend/api/validators"
	product "github.com/angelmondragon/its27-backend/internal/products"
	"github.com/angelmondragon/its27-backend/pkg/logger"
)

// UploadLimits bounds multipart image uploads.
type UploadLimits struct {
	MaxFiles int
	MaxBytes int64
}

type createProductRequest struct {
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Price       int64   `json:"price"`
	ImageID     int     `json:"image_id"`
	Description *string `json:"description"`
	IsFeatured  bool    `json:"is_featured"`
}

// updateProductRequest leaves omitted fields untouched.
type updateProductRequest struct {
	Name        *string `json:"name"`
	Category    *string `json:"category"`
	Price       *int64  `json:"price"`
	ImageID     *int    `json:"image_id"`
	Description *string `json:"description"`
	IsFeatured  *bool   `json:"is_featured"`
}

type reorderImagesRequest struct {
	Images []string `json:"images" validate:"required"`
}

func AdminProductGet(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, "product")
	}
	return endpointFunc(logg, http.StatusOK, func(_ http.ResponseWriter, r *http.Request) (any, error) {
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			return nil, err
		}
		return svc.Get(r.Context(), id)
	})
}

func AdminCreateProduct(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, "product")
	}
	return endpointFunc(logg, http.StatusCreated, func(_ http.ResponseWriter, r *http.Request) (any, error) {
		var req createProductRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			return nil, err
		}
		return svc.Create(r.Context(), product.CreateProductInput(req))
	})
}

// AdminUpdateProduct applies a partial update.
func AdminUpdateProduct(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, "product")
	}
	return endpointFunc(logg, http.StatusOK, func(_ http.ResponseWriter, r *http.Request) (any, error) {
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			return nil, err
		}
		var req updateProductRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			return nil, err
		}
		return svc.Update(r.Context(), id, product.UpdateProductInput(req))
	})
}

// AdminDeleteProduct needs ?confirm=true.
func AdminDeleteProduct(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, "product")
	}
	return endpointFunc(logg, http.StatusNoContent, func(_ http.ResponseWriter, r *http.Request) (any, error) {
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			return nil, err
		}
		confirmed, err := validators.ParseQueryBool(r, "confirm")
		if err != nil {
			return nil, err
		}
		return nil, svc.Delete(r.Context(), id, confirmed)
	})
}

// AdminAttachProductImages stores the multipart "images" files and appends
// them to the product. Files the store rejects are listed in the result.
func AdminAttachProductImages(svc product.Service, limits UploadLimits, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, "product")
	}
	return endpointFunc(logg, http.StatusOK, func(w http.ResponseWriter, r *http.Request) (any, error) {
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			return nil, err
		}
		files, cleanup, err := readUploads(w, r, "images", limits.MaxFiles, limits.MaxBytes)
		if err != nil {
			return nil, err
		}
		defer cleanup()
		return svc.AttachImages(r.Context(), id, files)
	})
}

func AdminReorderProductImages(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, "product")
	}
	return endpointFunc(logg, http.StatusOK, func(_ http.ResponseWriter, r *http.Request) (any, error) {
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			return nil, err
		}
		var req reorderImagesRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			return nil, err
		}
		return svc.ReorderImages(r.Context(), id, req.Images)
	})
}

// AdminPromoteProductImage moves the image at {index} to the front.
func AdminPromoteProductImage(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return imageAtIndex(svc, logg, product.Service.PromoteImage)
}

func AdminRemoveProductImage(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return imageAtIndex(svc, logg, product.Service.RemoveImage)
}

func imageAtIndex[T any](svc product.Service, logg *logger.Logger, op func(product.Service, context.Context, int64, int) (T, error)) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, "product")
	}
	return endpointFunc(logg, http.StatusOK, func(_ http.ResponseWriter, r *http.Request) (any, error) {
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			return nil, err
		}
		idx, err := validators.ParseIndexParam(r, "index")
		if err != nil {
			return nil, err
		}
		return op(svc, r.Context(), id, idx)
	})
}
