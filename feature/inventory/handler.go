package inventory

import (
	"errors"
	"time"

	"rims/core/logger"
	"rims/feature/inventory/importer"
	"rims/feature/inventory/restore"
	"rims/feature/inventory/sheet"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Handler handles HTTP requests for the inventory feature.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers the inventory routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	sites := app.Group("/sites")
	sites.Get("/", h.HandleListSites)
	sites.Get("/recent", h.HandleRecentSites)
	sites.Get("/:id/inventory", h.HandleSiteInventory)
	sites.Get("/:id/inventory/total", h.HandleSiteTotal)
	sites.Get("/:id/inventory/:code/history", h.HandleHistory)
	sites.Post("/:id/inventory/:code", h.HandleAddInventory)

	products := app.Group("/products")
	products.Get("/", h.HandleListProducts)
	products.Get("/recent", h.HandleRecentProducts)
	products.Get("/:code/inventory", h.HandleProductInventory)

	app.Post("/import/:kind", h.HandleImport)
	app.Get("/export/:kind", h.HandleExport)
	app.Post("/backup", h.HandleBackup)
	app.Post("/restore", h.HandleRestore)
}

// modifier extracts the writer identity supplied by the auth layer.
func modifier(c *fiber.Ctx) string {
	if m := c.Get("X-Modifier"); m != "" {
		return m
	}
	return "web"
}

// parseAsOf reads the optional asOf query parameter.
func parseAsOf(c *fiber.Ctx) (*time.Time, error) {
	raw := c.Query("asOf")
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseKind(c *fiber.Ctx) (sheet.Kind, bool) {
	switch c.Params("kind") {
	case "sites":
		return sheet.KindSite, true
	case "products":
		return sheet.KindProduct, true
	case "inventory":
		return sheet.KindInventory, true
	default:
		return 0, false
	}
}

// HandleListSites returns all sites.
// @Summary List sites
// @Tags sites
// @Produce json
// @Success 200 {array} models.Site
// @Router /sites [get]
func (h *Handler) HandleListSites(c *fiber.Ctx) error {
	sites, err := h.service.Sites(c.Context())
	if err != nil {
		return h.fail(c, "failed to list sites", err)
	}
	return c.JSON(sites)
}

// HandleRecentSites returns the most recently changed sites.
// @Summary Recently changed sites
// @Tags sites
// @Produce json
// @Param limit query int false "Number of distinct sites"
// @Success 200 {array} models.Site
// @Router /sites/recent [get]
func (h *Handler) HandleRecentSites(c *fiber.Ctx) error {
	limit := c.QueryInt("limit")
	sites, err := h.service.Ledger().RecentSites(c.Context(), limit)
	if err != nil {
		return h.fail(c, "failed to load recent sites", err)
	}
	return c.JSON(sites)
}

// HandleSiteInventory returns the reconciled inventory of a site.
// @Summary Reconciled site inventory
// @Tags sites
// @Produce json
// @Param id path int true "Site number"
// @Param asOf query string false "RFC3339 cutoff"
// @Success 200 {array} models.InventoryItem
// @Router /sites/{id}/inventory [get]
func (h *Handler) HandleSiteInventory(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid site number"})
	}
	asOf, err := parseAsOf(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid asOf timestamp"})
	}
	items, err := h.service.Ledger().LatestForSite(c.Context(), uint(id), asOf)
	if err != nil {
		return h.fail(c, "failed to reconcile site inventory", err)
	}
	return c.JSON(items)
}

// HandleSiteTotal returns the reconciled quantity total of a site.
// @Summary Total reconciled quantity for a site
// @Tags sites
// @Produce json
// @Param id path int true "Site number"
// @Success 200 {object} map[string]int64
// @Router /sites/{id}/inventory/total [get]
func (h *Handler) HandleSiteTotal(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid site number"})
	}
	total, err := h.service.Ledger().TotalForSite(c.Context(), uint(id))
	if err != nil {
		return h.fail(c, "failed to total site inventory", err)
	}
	return c.JSON(fiber.Map{"total": total})
}

// HandleHistory returns the raw ledger rows for a (site, product) pair.
// @Summary Inventory history for a site and product
// @Tags sites
// @Produce json
// @Param id path int true "Site number"
// @Param code path string true "Product code"
// @Param asOf query string false "RFC3339 cutoff"
// @Success 200 {array} models.InventoryItem
// @Router /sites/{id}/inventory/{code}/history [get]
func (h *Handler) HandleHistory(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid site number"})
	}
	asOf, err := parseAsOf(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid asOf timestamp"})
	}
	items, err := h.service.Ledger().History(c.Context(), uint(id), c.Params("code"), asOf)
	if err != nil {
		return h.fail(c, "failed to load history", err)
	}
	return c.JSON(items)
}

type addInventoryRequest struct {
	Quantity int  `json:"quantity"`
	Deleted  bool `json:"deleted"`
}

// HandleAddInventory appends a ledger row for a (site, product) pair.
// @Summary Append an inventory change
// @Tags sites
// @Accept json
// @Produce json
// @Param id path int true "Site number"
// @Param code path string true "Product code"
// @Success 201 {object} models.InventoryItem
// @Router /sites/{id}/inventory/{code} [post]
func (h *Handler) HandleAddInventory(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid site number"})
	}
	var req addInventoryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	item, err := h.service.AddInventory(c.Context(), uint(id), c.Params("code"), req.Quantity, req.Deleted, modifier(c))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return h.fail(c, "failed to append inventory", err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// HandleListProducts returns all products.
// @Summary List products
// @Tags products
// @Produce json
// @Success 200 {array} models.ProductInformation
// @Router /products [get]
func (h *Handler) HandleListProducts(c *fiber.Ctx) error {
	products, err := h.service.Products(c.Context())
	if err != nil {
		return h.fail(c, "failed to list products", err)
	}
	return c.JSON(products)
}

// HandleRecentProducts returns the most recently changed products.
// @Summary Recently changed products
// @Tags products
// @Produce json
// @Param limit query int false "Number of distinct products"
// @Success 200 {array} models.InventoryItem
// @Router /products/recent [get]
func (h *Handler) HandleRecentProducts(c *fiber.Ctx) error {
	limit := c.QueryInt("limit")
	items, err := h.service.Ledger().RecentProducts(c.Context(), limit)
	if err != nil {
		return h.fail(c, "failed to load recent products", err)
	}
	return c.JSON(items)
}

// HandleProductInventory returns the reconciled presence of a product
// across all sites.
// @Summary Reconciled product inventory across sites
// @Tags products
// @Produce json
// @Param code path string true "Product code"
// @Param asOf query string false "RFC3339 cutoff"
// @Success 200 {array} models.InventoryItem
// @Router /products/{code}/inventory [get]
func (h *Handler) HandleProductInventory(c *fiber.Ctx) error {
	asOf, err := parseAsOf(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid asOf timestamp"})
	}
	items, err := h.service.Ledger().LatestForProduct(c.Context(), c.Params("code"), asOf)
	if err != nil {
		return h.fail(c, "failed to reconcile product inventory", err)
	}
	return c.JSON(items)
}

// HandleImport imports one entity kind from an uploaded workbook.
// @Summary Import entities from a workbook
// @Tags transfer
// @Accept multipart/form-data
// @Produce json
// @Param kind path string true "sites | products | inventory"
// @Param file formData file true "xlsx workbook"
// @Param save query bool false "Persist accepted rows (default true)"
// @Success 200 {object} map[string]interface{}
// @Router /import/{kind} [post]
func (h *Handler) HandleImport(c *fiber.Ctx) error {
	kind, ok := parseKind(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown kind"})
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing workbook file"})
	}
	f, err := fh.Open()
	if err != nil {
		return h.fail(c, "failed to open upload", err)
	}
	defer f.Close()

	wb, err := sheet.Read(f)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Error while trying to import " + c.Params("kind") + " from spreadsheet",
		})
	}

	opts := importer.Options{Save: c.QueryBool("save", true)}
	count, warning, err := h.service.Import(c.Context(), kind, wb, modifier(c), opts)
	if err != nil {
		var badHeader *importer.BadHeaderError
		if errors.As(err, &badHeader) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": badHeader.Error()})
		}
		return h.fail(c, "import failed", err)
	}
	return c.JSON(fiber.Map{"imported": count, "warning": warning})
}

// HandleExport exports one entity kind as a workbook.
// @Summary Export entities as a workbook
// @Tags transfer
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param kind path string true "sites | products | inventory"
// @Success 200 {file} binary
// @Router /export/{kind} [get]
func (h *Handler) HandleExport(c *fiber.Ctx) error {
	kind, ok := parseKind(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown kind"})
	}
	wb, err := h.service.Export(c.Context(), kind)
	if err != nil {
		return h.fail(c, "export failed", err)
	}
	data, err := wb.Bytes()
	if err != nil {
		return h.fail(c, "failed to render workbook", err)
	}
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="rims-`+c.Params("kind")+`.xlsx"`)
	return c.Send(data)
}

// HandleBackup builds the combined backup workbook and uploads it when
// object storage is configured.
// @Summary Create a combined backup
// @Tags transfer
// @Produce json
// @Success 200 {object} map[string]string
// @Router /backup [post]
func (h *Handler) HandleBackup(c *fiber.Ctx) error {
	_, objectName, err := h.service.Backup(c.Context())
	if err != nil {
		return h.fail(c, "backup failed", err)
	}
	return c.JSON(fiber.Map{"object": objectName})
}

// HandleRestore replaces the database content with an uploaded backup.
// The auth layer in front of this route grants the full capability set.
// @Summary Restore from a combined backup
// @Tags transfer
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "xlsx backup workbook"
// @Success 200 {object} map[string]string
// @Router /restore [post]
func (h *Handler) HandleRestore(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing backup file"})
	}
	f, err := fh.Open()
	if err != nil {
		return h.fail(c, "failed to open upload", err)
	}
	defer f.Close()

	wb, err := sheet.Read(f)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unreadable backup workbook"})
	}

	msg, err := h.service.Restore(c.Context(), wb, modifier(c), restore.FullCapabilities())
	if err != nil {
		if errors.Is(err, restore.ErrPermissionDenied) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
		}
		l := logger.WithRayID(h.logger, c)
		l.Error("Restore failed", zap.Error(err))
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": msg})
}

func (h *Handler) fail(c *fiber.Ctx, msg string, err error) error {
	l := logger.WithRayID(h.logger, c)
	l.Error(msg, zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": err.Error(),
	})
}
