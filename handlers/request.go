package handlers

import (
	"strconv"
	"strings"
	"time"

	"vidaview/utils"

	"github.com/gin-gonic/gin"
)

// parseDateField parses a required YYYY-MM-DD value, reporting field on failure.
func parseDateField(field, value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, utils.NewValidationError(field, field+" is required")
	}
	d, err := utils.ParseDate(value)
	if err != nil {
		return time.Time{}, utils.NewValidationError(field, field+" must be YYYY-MM-DD")
	}
	return d, nil
}

func parseRange(start, end string) (time.Time, time.Time, error) {
	s, err := parseDateField("startDate", start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	e, err := parseDateField("endDate", end)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return s, e, nil
}

func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return v
}

func bindError(err error) error {
	return utils.NewValidationError("body", err.Error())
}
