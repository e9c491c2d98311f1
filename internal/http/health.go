package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yaneduardo117/Biblioteca-escolar/internal/database"
)

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
}

type HealthController struct {
	db      *database.Database
	version string
}

func NewHealthController(db *database.Database, version string) *HealthController {
	return &HealthController{db: db, version: version}
}

// checkDatabase pings the underlying connection. A nil database reports
// "not configured" without failing the whole check.
func (h *HealthController) checkDatabase() (string, bool) {
	if h.db == nil {
		return "not configured", true
	}
	sqlDB, err := h.db.DB.DB()
	if err == nil {
		err = sqlDB.Ping()
	}
	if err != nil {
		return "error: " + err.Error(), false
	}
	return "ok", true
}

func (h *HealthController) Status(c *gin.Context) {
	dbCheck, dbOK := h.checkDatabase()

	status := "healthy"
	statusCode := http.StatusOK
	if !dbOK {
		status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	c.IndentedJSON(statusCode, HealthResponse{
		Status:  status,
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  map[string]string{"database": dbCheck},
	})
}
