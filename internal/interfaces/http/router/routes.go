package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopdesk/backend/internal/domain/identity"
	"github.com/shopdesk/backend/internal/interfaces/http/handler"
	"github.com/shopdesk/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// Handlers bundles every HTTP handler of the API
type Handlers struct {
	Auth            *handler.AuthHandler
	User            *handler.UserHandler
	Department      *handler.DepartmentHandler
	Employee        *handler.EmployeeHandler
	Category        *handler.CategoryHandler
	Product         *handler.ProductHandler
	Supplier        *handler.SupplierHandler
	Customer        *handler.CustomerHandler
	Cart            *handler.CartHandler
	Sale            *handler.SaleHandler
	PurchaseRequest *handler.PurchaseRequestHandler
	Mpesa           *handler.MpesaHandler
	Message         *handler.MessageHandler
	Report          *handler.ReportHandler
	System          *handler.SystemHandler
}

// Guards holds the middleware that protects route groups
type Guards struct {
	// Authenticate runs on every route that needs a signed-in user
	Authenticate []gin.HandlerFunc
	// AuthLimit throttles login and refresh attempts
	AuthLimit gin.HandlerFunc
	// CallbackLimit throttles the public payment callback
	CallbackLimit gin.HandlerFunc
	// Idempotent guards money-moving writes against client retries
	Idempotent gin.HandlerFunc
	Logger     *zap.Logger
}

// Mount registers the full API on the engine: the versioned groups under
// /api/v1 plus /health, /metrics and the fallback for unknown routes
func Mount(engine *gin.Engine, h Handlers, g Guards, metrics http.Handler) *Router {
	engine.GET("/health", h.System.Health)
	if metrics != nil {
		engine.GET("/metrics", gin.WrapH(metrics))
	}
	engine.NoRoute(middleware.NoRoute())

	r := NewRouter(engine, WithAPIVersion("v1"))
	r.Register(APIGroups(h, g)...)
	r.Setup()
	return r
}

// APIGroups builds the versioned route groups
func APIGroups(h Handlers, g Guards) []RouteRegistrar {
	return []RouteRegistrar{
		publicRoutes(h, g),
		authRoutes(h, g),
		adminRoutes(h, g),
		employeeRoutes(h, g),
		messageRoutes(h, g),
		customerRoutes(h, g),
	}
}

// with prepends an optional guard to a handler
func with(guard gin.HandlerFunc, next gin.HandlerFunc) []gin.HandlerFunc {
	if guard == nil {
		return []gin.HandlerFunc{next}
	}
	return []gin.HandlerFunc{guard, next}
}

func publicRoutes(h Handlers, g Guards) *DomainGroup {
	public := NewDomainGroup("public", "")
	public.POST("/auth/login", with(g.AuthLimit, h.Auth.Login)...)
	public.POST("/auth/refresh", with(g.AuthLimit, h.Auth.RefreshToken)...)
	public.POST("/mpesa/callback", with(g.CallbackLimit, h.Mpesa.Callback)...)
	public.GET("/system/ping", h.System.Ping)
	public.GET("/system/info", h.System.GetSystemInfo)
	return public
}

func authRoutes(h Handlers, g Guards) *DomainGroup {
	auth := NewDomainGroup("auth", "/auth").Use(g.Authenticate...)
	auth.POST("/logout", h.Auth.Logout)
	auth.GET("/me", h.Auth.GetCurrentUser)
	auth.PUT("/password", h.Auth.ChangePassword)
	return auth
}

func adminRoutes(h Handlers, g Guards) *DomainGroup {
	admin := NewDomainGroup("admin", "/admin").
		Use(g.Authenticate...).
		Use(middleware.RequireRole(g.Logger, string(identity.RoleAdmin)))

	users := admin.Group("users", "/users")
	users.POST("", h.User.Create)
	users.GET("", h.User.List)
	users.GET("/:id", h.User.GetByID)
	users.PUT("/:id", h.User.Update)
	users.DELETE("/:id", h.User.Delete)
	users.POST("/:id/activate", h.User.Activate)
	users.POST("/:id/deactivate", h.User.Deactivate)
	users.POST("/:id/reset-password", h.User.ResetPassword)
	users.GET("/:id/departments", h.Department.ListForUser)

	departments := admin.Group("departments", "/departments")
	departments.POST("", h.Department.Create)
	departments.GET("", h.Department.List)
	departments.GET("/:id", h.Department.GetByID)
	departments.PUT("/:id", h.Department.Update)
	departments.DELETE("/:id", h.Department.Delete)
	departments.GET("/:id/members", h.Department.ListMembers)
	departments.POST("/:id/members", h.Department.AssignUser)
	departments.DELETE("/:id/members/:user_id", h.Department.RemoveUser)

	employees := admin.Group("employees", "/employees")
	employees.POST("", h.Employee.Create)
	employees.GET("", h.Employee.List)
	employees.GET("/:id", h.Employee.Get)
	employees.PUT("/:id", h.Employee.Update)
	employees.POST("/:id/deactivate", h.Employee.Deactivate)
	employees.POST("/:id/salaries", h.Employee.AddSalary)
	employees.GET("/:id/salaries", h.Employee.ListSalaries)
	employees.POST("/:id/fines", h.Employee.IssueFine)
	employees.GET("/:id/fines", h.Employee.ListFines)
	employees.POST("/:id/payments", with(g.Idempotent, h.Employee.RecordPayment)...)
	employees.GET("/:id/payments", h.Employee.ListPayments)
	employees.GET("/:id/summary", h.Employee.Summary)
	admin.POST("/salaries/:salary_id/pay", h.Employee.MarkSalaryPaid)
	admin.POST("/fines/:fine_id/waive", h.Employee.WaiveFine)

	categories := admin.Group("categories", "/categories")
	categories.POST("", h.Category.Create)
	categories.GET("", h.Category.List)
	categories.GET("/:id", h.Category.GetByID)
	categories.PUT("/:id", h.Category.Update)
	categories.DELETE("/:id", h.Category.Delete)
	categories.POST("/:id/toggle", h.Category.ToggleActive)

	products := admin.Group("products", "/products")
	products.POST("", h.Product.Create)
	products.PUT("/:id", h.Product.Update)
	products.DELETE("/:id", h.Product.Delete)
	products.POST("/:id/toggle", h.Product.ToggleActive)
	products.POST("/:id/barcode", h.Product.GenerateBarcode)
	products.GET("/:id/stock-history", h.Product.StockHistory)

	suppliers := admin.Group("suppliers", "/suppliers")
	suppliers.POST("", h.Supplier.Create)
	suppliers.GET("", h.Supplier.List)
	suppliers.GET("/:id", h.Supplier.GetByID)
	suppliers.PUT("/:id", h.Supplier.Update)
	suppliers.DELETE("/:id", h.Supplier.Delete)
	suppliers.POST("/:id/toggle", h.Supplier.ToggleActive)
	suppliers.POST("/:id/supplies", h.Supplier.RecordSupply)
	suppliers.GET("/:id/supplies", h.Supplier.ListSupplies)
	suppliers.POST("/:id/invoices", h.Supplier.CreateInvoice)
	suppliers.GET("/:id/invoices", h.Supplier.ListInvoices)
	suppliers.POST("/:id/payments", with(g.Idempotent, h.Supplier.RecordPayment)...)
	suppliers.GET("/:id/payments", h.Supplier.ListPayments)
	suppliers.GET("/:id/balance", h.Supplier.Balance)

	customers := admin.Group("customers", "/customers")
	customers.POST("", h.Customer.Create)
	customers.GET("", h.Customer.List)
	customers.GET("/:id", h.Customer.GetByID)
	customers.PUT("/:id", h.Customer.Update)
	customers.DELETE("/:id", h.Customer.Delete)

	admin.POST("/sales/:id/void", h.Sale.Void)

	mpesa := admin.Group("mpesa", "/mpesa")
	mpesa.GET("", h.Mpesa.List)
	mpesa.GET("/receipt/:receipt", h.Mpesa.GetByReceipt)
	mpesa.GET("/:id", h.Mpesa.GetByID)
	mpesa.POST("/:id/link", h.Mpesa.LinkToSale)

	reports := admin.Group("reports", "/reports")
	reports.GET("/sales", h.Report.SalesReport)
	reports.GET("/products", h.Report.ProductReport)
	reports.GET("/suppliers", h.Report.SupplierReport)
	reports.GET("/employees", h.Report.EmployeeReport)
	reports.GET("/export", h.Report.Export)

	exports := admin.Group("exports", "/exports")
	exports.GET("/products", h.Report.ExportProducts)
	exports.GET("/suppliers", h.Report.ExportSuppliers)

	return admin
}

func employeeRoutes(h Handlers, g Guards) *DomainGroup {
	staff := NewDomainGroup("employee", "/employee").
		Use(g.Authenticate...).
		Use(middleware.RequireRole(g.Logger, string(identity.RoleAdmin), string(identity.RoleEmployee)))

	staff.GET("/dashboard", h.Report.Dashboard)
	staff.GET("/profile", h.Employee.Me)
	staff.GET("/profile/summary", h.Employee.MySummary)

	products := staff.Group("products", "/products")
	products.GET("", h.Product.List)
	products.GET("/low-stock", h.Product.LowStock)
	products.GET("/sku/:code", h.Product.GetBySKU)
	products.GET("/:id", h.Product.GetByID)
	products.GET("/:id/barcode", h.Product.Barcode)
	products.GET("/:id/label", h.Product.Label)
	products.POST("/:id/stock", h.Product.AdjustStock)

	sales := staff.Group("sales", "/sales")
	sales.POST("", with(g.Idempotent, h.Sale.Checkout)...)
	sales.GET("", h.Sale.List)
	sales.GET("/summary", h.Sale.DailySummary)
	sales.GET("/receipt/:receipt", h.Sale.GetByReceiptNumber)
	sales.GET("/:id", h.Sale.GetByID)
	sales.GET("/:id/receipt", h.Sale.Receipt)

	requests := staff.Group("purchase-requests", "/purchase-requests")
	requests.POST("", with(g.Idempotent, h.PurchaseRequest.Create)...)
	requests.GET("", h.PurchaseRequest.List)
	requests.GET("/:id", h.PurchaseRequest.GetByID)
	requests.PUT("/:id/status", h.PurchaseRequest.UpdateStatus)

	return staff
}

func messageRoutes(h Handlers, g Guards) *DomainGroup {
	messages := NewDomainGroup("messages", "/messages").Use(g.Authenticate...)
	messages.POST("", h.Message.Send)
	messages.GET("/inbox", h.Message.Inbox)
	messages.GET("/sent", h.Message.Sent)
	messages.GET("/unread-count", h.Message.UnreadCount)
	messages.GET("/conversations", h.Message.Conversations)
	messages.GET("/conversations/:user_id", h.Message.Conversation)
	messages.POST("/conversations/:user_id/read", h.Message.MarkConversationRead)
	messages.POST("/:id/read", h.Message.MarkRead)
	messages.DELETE("/:id", h.Message.Delete)
	return messages
}

func customerRoutes(h Handlers, g Guards) *DomainGroup {
	customer := NewDomainGroup("customer", "/customers/:id").Use(g.Authenticate...)

	cart := customer.Group("cart", "/cart")
	cart.GET("", h.Cart.GetCart)
	cart.DELETE("", h.Cart.Clear)
	cart.POST("/items", h.Cart.AddItem)
	cart.PUT("/items/:product_id", h.Cart.UpdateItem)
	cart.DELETE("/items/:product_id", h.Cart.RemoveItem)

	wishlist := customer.Group("wishlist", "/wishlist")
	wishlist.GET("", h.Cart.ListWishlist)
	wishlist.POST("", h.Cart.AddToWishlist)
	wishlist.DELETE("/:product_id", h.Cart.RemoveFromWishlist)
	wishlist.POST("/:product_id/move-to-cart", h.Cart.MoveToCart)

	return customer
}
