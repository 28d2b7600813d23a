package marketplaceserver

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	catalogapp "github.com/Apurer/go-gin-marketplace/internal/domains/catalog/application"
	catalogports "github.com/Apurer/go-gin-marketplace/internal/domains/catalog/ports"
	customerapp "github.com/Apurer/go-gin-marketplace/internal/domains/customers/application"
	customerports "github.com/Apurer/go-gin-marketplace/internal/domains/customers/ports"
	orderapp "github.com/Apurer/go-gin-marketplace/internal/domains/orders/application"
	orderports "github.com/Apurer/go-gin-marketplace/internal/domains/orders/ports"
	apierrors "github.com/Apurer/go-gin-marketplace/internal/shared/errors"
)

// responder converts service errors into RFC 7807 responses. Unmapped errors become 500.
var responder = apierrors.NewResponder("",
	mapStockError,
	mapPlacementError,
	mapInvalidInput,
	mapNotFound,
	mapConflict,
)

func respondError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	responder.RespondError(c, err)
}

func respondBadRequest(c *gin.Context, err error) {
	responder.BadRequest(c, err.Error())
}

func mapStockError(err error) (apierrors.ProblemDetail, bool) {
	var stock *orderapp.StockError
	if !errors.As(err, &stock) {
		return apierrors.ProblemDetail{}, false
	}
	return apierrors.ErrBadRequest.
		WithDetail(stock.Error()).
		WithExtension("code", string(orderapp.KindInsufficientStock)).
		WithExtension("product_id", stock.ProductID).
		WithExtension("requested", stock.Requested).
		WithExtension("available", stock.Available), true
}

func mapPlacementError(err error) (apierrors.ProblemDetail, bool) {
	var placement *orderapp.PlacementError
	if !errors.As(err, &placement) {
		return apierrors.ProblemDetail{}, false
	}
	return apierrors.ErrBadRequest.
		WithDetail(placement.Message).
		WithExtension("code", string(placement.Kind)), true
}

func mapInvalidInput(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, orderapp.ErrInvalidInput),
		errors.Is(err, catalogapp.ErrInvalidInput),
		errors.Is(err, customerapp.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	case errors.Is(err, customerports.ErrEmailInUse):
		return apierrors.ErrBadRequest.WithDetail("This e-mail is already assigned"), true
	case errors.Is(err, catalogports.ErrNameInUse):
		return apierrors.ErrBadRequest.WithDetail("This product name is already in use"), true
	}
	return apierrors.ProblemDetail{}, false
}

func mapNotFound(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, orderports.ErrNotFound),
		errors.Is(err, catalogports.ErrNotFound),
		errors.Is(err, customerports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func mapConflict(err error) (apierrors.ProblemDetail, bool) {
	if errors.Is(err, orderports.ErrIdempotencyConflict) {
		return apierrors.ErrConflict.WithDetail("Idempotency-Key was already used with a different request"), true
	}
	return apierrors.ProblemDetail{}, false
}

// bindUUIDParam binds a UUID path parameter and answers 400 when it is malformed.
func bindUUIDParam(c *gin.Context, name string) (string, bool) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, c.Param(name), &id, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil {
		responder.Respond(c, apierrors.ErrBadRequest.
			WithDetail("Invalid format for parameter "+name).
			WithExtension("parameter", name))
		return "", false
	}
	return id.String(), true
}
