package cart

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/Weilei424/leafwheels-sub000/pkg/db/models"
)

// Checksum fingerprints the cart contents. Two carts holding the same
// multiset of (kind, referenced entity, quantity) produce the same checksum
// regardless of line order or line identity, so removing and re-adding an
// item leaves the checksum unchanged. Any add, remove, reference, or
// quantity change produces a different one. Checkout pins a session to this
// value and rejects the commit if the cart drifted underneath it.
func Checksum(items []models.CartItem) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		vehicleRef, accessoryRef := "none", "none"
		if item.VehicleID != nil {
			vehicleRef = item.VehicleID.String()
		}
		if item.AccessoryID != nil {
			accessoryRef = item.AccessoryID.String()
		}
		lines = append(lines, fmt.Sprintf(
			"%s|%s|%s|%d",
			item.Kind,
			vehicleRef,
			accessoryRef,
			item.Quantity,
		))
	}
	sort.Strings(lines)

	sum := sha256.Sum256([]byte(strings.Join(lines, "\n")))
	return hex.EncodeToString(sum[:])
}
