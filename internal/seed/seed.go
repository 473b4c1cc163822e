// Package seed installs minimal development fixtures so a fresh local
// database can place an order immediately.
package seed

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/coopfoods/ajomart/internal/auth/pin"
	branchdomain "github.com/coopfoods/ajomart/internal/branch/domain"
	catalogdomain "github.com/coopfoods/ajomart/internal/catalog/domain"
	memberdomain "github.com/coopfoods/ajomart/internal/member/domain"
	"gorm.io/gorm"
)

const devPIN = "1234"

// EnsureDevFixtures seeds one branch, one department, a small catalog and
// one member. It is a no-op when any branch already exists.
func EnsureDevFixtures(db *gorm.DB, node *snowflake.Node) error {
	var count int64
	if err := db.Raw(`SELECT COUNT(*) FROM branches`).Scan(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()

	branch := branchdomain.Branch{
		ID:        node.Generate(),
		Code:      "B001",
		Name:      "Garki",
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.Create(&branch).Error; err != nil {
		return err
	}

	department := branchdomain.Department{
		ID:        node.Generate(),
		Name:      "OPERATIONS",
		CreatedAt: now,
	}
	if err := db.Create(&department).Error; err != nil {
		return err
	}

	cycleID := node.Generate()
	items := []struct {
		sku   string
		name  string
		unit  string
		price int64
	}{
		{"RICE50KG", "Rice 50kg", "bag", 4_500_000},
		{"BEANS25KG", "Beans 25kg", "bag", 3_000_000},
		{"OIL25L", "Vegetable Oil 25L", "keg", 2_800_000},
	}
	for _, it := range items {
		item := catalogdomain.Item{
			ID:        node.Generate(),
			SKU:       it.sku,
			Name:      it.name,
			Unit:      it.unit,
			Category:  "GRAINS",
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := db.Create(&item).Error; err != nil {
			return err
		}
		price := catalogdomain.BranchItemPrice{
			ID:        node.Generate(),
			BranchID:  branch.ID,
			ItemID:    item.ID,
			CycleID:   cycleID,
			UnitPrice: it.price,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := db.Create(&price).Error; err != nil {
			return err
		}
	}

	pinHash, err := pin.Hash(devPIN)
	if err != nil {
		return err
	}
	member := memberdomain.Member{
		ID:          node.Generate(),
		MemberCode:  "M-0001",
		Name:        "Dev Member",
		Category:    "ADMIN",
		Savings:     10_000_000,
		Loans:       0,
		GlobalLimit: 80_000_000,
		BranchID:    branch.ID,
		PINHash:     &pinHash,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return db.Create(&member).Error
}
