package apiutil

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

const tenantIDQueryKey = "tenant_id"

func ParsePositiveInt64Field(raw string, field string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, FieldError{Field: field, Reason: "is required"}
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value <= 0 {
		return 0, FieldError{Field: field, Reason: "must be a positive integer"}
	}
	return value, nil
}

func TenantIDFromQuery(r *http.Request) (int64, error) {
	return ParsePositiveInt64Field(r.URL.Query().Get(tenantIDQueryKey), tenantIDQueryKey)
}

func IDFromPath(r *http.Request, name string) (int64, error) {
	raw := strings.TrimSpace(r.PathValue(name))
	if raw == "" {
		return 0, fmt.Errorf("invalid %s", name)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}
