// Package auth handles password hashing and JWT issuance/verification for
// the HTTP API.
package auth

import (
	"strings"

	"github.com/alexedwards/argon2id"
	"github.com/go-playground/validator/v10"
)

var argonParams = &argon2id.Params{
	Memory:      128 * 1024,
	Iterations:  4,
	Parallelism: uint8(4),
	SaltLength:  32,
	KeyLength:   64,
}

// PasswordInput is a struct for validating password inputs
type PasswordInput struct {
	Password string `validate:"required,min=8,max=512"`
}

// HashPassword validates basic length rules and returns the argon2id hash.
func HashPassword(input PasswordInput) (string, error) {
	if err := validator.New().Struct(input); err != nil {
		return "", err
	}
	return argon2id.CreateHash(input.Password, argonParams)
}

// VerifyPassword compares a candidate password against a stored hash.
func VerifyPassword(password, hash string) (bool, error) {
	return argon2id.ComparePasswordAndHash(password, hash)
}

// IsArgonEncoded returns true if the input is an argon2id hash
func IsArgonEncoded(input string) bool {
	return strings.HasPrefix(input, "$argon2id$")
}
