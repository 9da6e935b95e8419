// Package httpapi exposes the storefront's REST surface over chi.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// decodeValid decodes the request body into dst and validates its shape.
// On failure it writes a 400 with a readable message and returns false.
func decodeValid(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Geçersiz istek gövdesi")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Geçersiz istek"
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s alanı zorunludur", fe.Field())
	case "email":
		return "Geçerli bir e-posta adresi girin"
	case "min":
		return fmt.Sprintf("%s alanı en az %s karakter olmalıdır", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s alanı en fazla %s karakter olmalıdır", fe.Field(), fe.Param())
	case "len":
		return fmt.Sprintf("%s alanı %s karakter olmalıdır", fe.Field(), fe.Param())
	case "numeric":
		return fmt.Sprintf("%s alanı yalnızca rakam içermelidir", fe.Field())
	case "gte", "gt":
		return fmt.Sprintf("%s alanı geçersiz bir değer içeriyor", fe.Field())
	}
	return fmt.Sprintf("%s alanı geçersiz", fe.Field())
}
