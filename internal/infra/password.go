package infra

import "golang.org/x/crypto/bcrypt"

// BcryptCost is the work factor of every stored password hash.
const BcryptCost = 12

// HashPassword returns the bcrypt hash of plain at BcryptCost.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
