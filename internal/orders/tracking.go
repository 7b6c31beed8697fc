package orders

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// NewTrackingCode issues a dealership reference number: "ACL-" followed by
// six random digits in [100000, 999999]. Uniqueness is not enforced locally;
// collisions are acceptable at this business's volume.
func NewTrackingCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ACL-%d", n.Int64()+100000), nil
}
