// internal/utils/crypto.go
package utils

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func CheckPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// GenerateOrderRef returns a sortable human readable reference such as
// 20240131154502-6f1c....
func GenerateOrderRef(now time.Time) string {
	return now.UTC().Format("20060102150405") + "-" + uuid.NewString()
}
