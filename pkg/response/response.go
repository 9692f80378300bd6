package response

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/attendance-dashboard/internal/models"
	appErrors "github.com/noah-isme/attendance-dashboard/pkg/errors"
)

// Envelope is the body of every JSON answer of the dashboard. Alert is set
// when the browser shell should show a toast.
type Envelope struct {
	Data       interface{}            `json:"data,omitempty"`
	Error      *appErrors.Error       `json:"error,omitempty"`
	Alert      *models.Alert          `json:"alert,omitempty"`
	Pagination *models.Pagination     `json:"pagination,omitempty"`
	Meta       map[string]interface{} `json:"meta,omitempty"`
}

// Page views are per session and must not be cached by the browser or a proxy.
func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}

// JSON sends data with optional pagination and meta.
func JSON(c *gin.Context, status int, data interface{}, pagination *models.Pagination, meta ...map[string]interface{}) {
	noStore(c)
	env := Envelope{Data: data, Pagination: pagination}
	if len(meta) > 0 && len(meta[0]) > 0 {
		env.Meta = meta[0]
	}
	c.JSON(status, env)
}

// WithAlert sends data together with a toast.
func WithAlert(c *gin.Context, status int, data interface{}, alert models.Alert) {
	noStore(c)
	c.JSON(status, Envelope{Data: data, Alert: &alert})
}

// Error converts err and sends it with an error toast carrying its message.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	noStore(c)
	alert := models.ErrorAlert(appErr.Message)
	c.JSON(appErr.Status, Envelope{Error: appErr, Alert: &alert})
}

// Redirect aborts with err and the page the shell should move to.
func Redirect(c *gin.Context, err *appErrors.Error, target string) {
	noStore(c)
	c.AbortWithStatusJSON(err.Status, Envelope{
		Error: err,
		Meta:  map[string]interface{}{"redirect": target},
	})
}

// Loading aborts with 202 while the session is still being resolved; the
// shell retries after retryAfter seconds.
func Loading(c *gin.Context, retryAfter int, data interface{}) {
	noStore(c)
	c.Header("Retry-After", strconv.Itoa(retryAfter))
	c.AbortWithStatusJSON(http.StatusAccepted, Envelope{Data: data})
}

// Attachment sends a downloadable file.
func Attachment(c *gin.Context, filename, contentType string, body []byte) {
	noStore(c)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, body)
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
