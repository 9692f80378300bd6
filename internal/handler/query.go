package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/attendance-dashboard/internal/table"
	appErrors "github.com/noah-isme/attendance-dashboard/pkg/errors"
)

// parseChange reads the table parameters of a page request:
//
//	filter[<column>]=<value>  the full filter set; columns not named are cleared
//	sort=<column>&order=asc|desc
//	per_page=<n>&page=<n>
//	reset=true                clears every filter and the sort
//
// Parameters that are absent leave the remembered state alone.
func parseChange(c *gin.Context) (table.Change, error) {
	var change table.Change

	if reset, _ := strconv.ParseBool(c.Query("reset")); reset {
		change.Filters = &table.Filters{}
		change.Sort = &table.Sort{}
	}

	if raw, ok := c.GetQueryMap("filter"); ok {
		filters := make(table.Filters, len(raw))
		for name, value := range raw {
			filters[strings.TrimSpace(name)] = strings.TrimSpace(value)
		}
		change.Filters = &filters
	}

	if key, ok := c.GetQuery("sort"); ok {
		sort := table.Sort{}
		if key = strings.TrimSpace(key); key != "" {
			sort = table.Sort{Key: key, Direction: table.ParseDirection(c.Query("order"))}
		}
		change.Sort = &sort
	}

	var err error
	if change.PerPage, err = positiveQuery(c, "per_page"); err != nil {
		return table.Change{}, err
	}
	if change.Page, err = positiveQuery(c, "page"); err != nil {
		return table.Change{}, err
	}
	return change, nil
}

func positiveQuery(c *gin.Context, name string) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, appErrors.Clone(appErrors.ErrValidation, name+" must be a positive integer")
	}
	if n > table.MaxPage {
		return 0, appErrors.Clone(appErrors.ErrValidation, name+" is too large")
	}
	return n, nil
}
