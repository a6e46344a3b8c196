package handlers

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/01moynul/wholesale-shop/internal/apperr"
	"github.com/01moynul/wholesale-shop/internal/auth"
	"github.com/01moynul/wholesale-shop/internal/inventory"
	"github.com/01moynul/wholesale-shop/internal/models"
	"github.com/01moynul/wholesale-shop/internal/orders"
	"github.com/01moynul/wholesale-shop/internal/reports"
)

// Handlers struct holds all dependencies for our handlers.
type Handlers struct {
	DB        *sql.DB
	Inventory *inventory.Store
	Orders    *orders.Manager
	Reports   *reports.Aggregator
	Users     *auth.UserStore
	Tokens    *auth.TokenManager
	Logger    *zap.Logger

	UploadDir string
	BaseURL   string
}

// New wires the stores and managers around one database handle.
func New(db *sql.DB, tokens *auth.TokenManager, logger *zap.Logger) *Handlers {
	inv := inventory.NewStore(db)
	return &Handlers{
		DB:        db,
		Inventory: inv,
		Orders:    orders.NewManager(db, inv, logger),
		Reports:   reports.NewAggregator(db),
		Users:     auth.NewUserStore(db),
		Tokens:    tokens,
		Logger:    logger,
		UploadDir: "./uploads",
	}
}

// Health is the handler for GET /api/health.
func (h *Handlers) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.DB.PingContext(ctx); err != nil {
		h.Logger.Warn("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "DOWN", "message": "Database unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "Server is healthy"})
}

// RegisterValidators adds the custom binding tags and makes validation
// messages use JSON field names. Safe to call more than once.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("handlers: gin validator is not go-playground/validator")
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return v.RegisterValidation("order_status", func(fl validator.FieldLevel) bool {
		_, ok := models.ParseOrderStatus(fl.Field().String())
		return ok
	})
}

// bindError turns a ShouldBind failure into a ValidationError with a message
// a person can act on.
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.Validation("Invalid request body.")
	}

	fe := verrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return apperr.Validation("%s is required", field)
	case "min":
		if fe.Kind() == reflect.String {
			return apperr.Validation("%s must be at least %s characters long", field, fe.Param())
		}
		return apperr.Validation("%s must contain at least %s item(s)", field, fe.Param())
	case "max":
		return apperr.Validation("%s must be at most %s characters long", field, fe.Param())
	case "gt", "gte":
		return apperr.Validation("%s must be greater than %s%s", field, orEqual(fe.Tag()), fe.Param())
	case "email":
		return apperr.Validation("%s must be a valid email address", field)
	case "order_status":
		return apperr.Validation("Invalid status. Must be one of: %s", statusNames())
	default:
		return apperr.Validation("%s is invalid", field)
	}
}

func orEqual(tag string) string {
	if tag == "gte" {
		return "or equal to "
	}
	return ""
}

func statusNames() string {
	names := make([]string, len(models.OrderStatuses))
	for i, s := range models.OrderStatuses {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

// paramID reads a positive integer path parameter.
func paramID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("Invalid %s: %q", name, c.Param(name))
	}
	return id, nil
}

// atoiOr parses s, returning def when s is empty or not a number.
func atoiOr(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}

func queryBool(s string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	return err == nil && b
}
