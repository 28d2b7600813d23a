package marketplaceserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
}

// ApiHandleFunctions groups the handlers of every API section.
type ApiHandleFunctions struct {
	CustomerAPI CustomerAPI
	ProductAPI  ProductAPI
	OrderAPI    OrderAPI
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions)
}

// NewRouterWithGinEngine adds the API routes to an existing engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		router.Handle(route.Method, route.Pattern, route.HandlerFunc)
	}
	return router
}

// DefaultHandleFunc answers routes whose handler is not wired.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

// Healthz reports liveness.
func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	return []Route{
		{"Healthz", http.MethodGet, "/healthz", Healthz},
		{"CreateCustomer", http.MethodPost, "/v1/customers", handleFunctions.CustomerAPI.CreateCustomer},
		{"GetCustomer", http.MethodGet, "/v1/customers/:customerId", handleFunctions.CustomerAPI.GetCustomer},
		{"ListCustomerOrders", http.MethodGet, "/v1/customers/:customerId/orders", handleFunctions.OrderAPI.ListCustomerOrders},
		{"CreateProduct", http.MethodPost, "/v1/products", handleFunctions.ProductAPI.CreateProduct},
		{"ListProducts", http.MethodGet, "/v1/products", handleFunctions.ProductAPI.ListProducts},
		{"GetProduct", http.MethodGet, "/v1/products/:productId", handleFunctions.ProductAPI.GetProduct},
		{"RestockProduct", http.MethodPost, "/v1/products/:productId/restock", handleFunctions.ProductAPI.RestockProduct},
		{"PlaceOrder", http.MethodPost, "/v1/orders", handleFunctions.OrderAPI.PlaceOrder},
		{"GetOrder", http.MethodGet, "/v1/orders/:orderId", handleFunctions.OrderAPI.GetOrder},
	}
}
