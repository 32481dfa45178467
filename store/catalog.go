// Package store holds the database operations behind the API: user lookup
// and catalog CRUD. All functions take the *gorm.DB they operate on so that
// tests can run them against a throwaway database.
package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/himique/Industial-Automation/models"
)

// ErrConflict is returned when a write violates a uniqueness or referential
// rule: duplicate mesh id per product, duplicate step number per plan, or
// deleting a component that a step still references.
var ErrConflict = errors.New("conflict with existing data")

// StepInput describes one step of a plan being created.
type StepInput struct {
	ComponentID uint
	StepNumber  int
	ActionType  string
}

// ListProducts returns all products ordered by name.
func ListProducts(ctx context.Context, db *gorm.DB) ([]models.Product, error) {
	var products []models.Product
	if err := db.WithContext(ctx).Order("name").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return products, nil
}

// GetProduct returns the product or nil when it does not exist.
func GetProduct(ctx context.Context, db *gorm.DB, id uint) (*models.Product, error) {
	var product models.Product
	err := db.WithContext(ctx).First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading product %d: %w", id, err)
	}
	return &product, nil
}

// GetProductIDByWorkstationName resolves a workstation's computer name to
// its product id, case-insensitively. Returns 0 when no workstation matches.
func GetProductIDByWorkstationName(ctx context.Context, db *gorm.DB, name string) (uint, error) {
	var ws models.Workstation
	err := db.WithContext(ctx).
		Where("LOWER(computer_name) = LOWER(?)", name).
		First(&ws).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("looking up workstation %q: %w", name, err)
	}
	return ws.ProductID, nil
}

// GetAssemblyPlan loads the product's plan with its steps in step order and
// each step's component, plus the product itself. Returns nil when the
// product has no plan.
func GetAssemblyPlan(ctx context.Context, db *gorm.DB, productID uint) (*models.AssemblyPlan, error) {
	var plan models.AssemblyPlan
	err := db.WithContext(ctx).
		Preload("Steps", func(tx *gorm.DB) *gorm.DB { return tx.Order("step_number") }).
		Preload("Steps.Component").
		Preload("Product").
		Where("product_id = ?", productID).
		First(&plan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading assembly plan for product %d: %w", productID, err)
	}
	return &plan, nil
}

// CreateProduct inserts a new product.
func CreateProduct(ctx context.Context, db *gorm.DB, name, description string) (*models.Product, error) {
	product := models.Product{Name: name, Description: description}
	if err := db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, fmt.Errorf("creating product: %w", err)
	}
	return &product, nil
}

// SetProductModelPath stores the path of the product's uploaded model file.
func SetProductModelPath(ctx context.Context, db *gorm.DB, id uint, path string) error {
	result := db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Update("model_path", path)
	if result.Error != nil {
		return fmt.Errorf("updating model path for product %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AddComponent adds a component to a product. A duplicate (product, mesh id)
// pair yields ErrConflict.
func AddComponent(ctx context.Context, db *gorm.DB, productID uint, name, meshID string) (*models.Component, error) {
	component := models.Component{ProductID: productID, Name: name, MeshID: meshID}
	err := db.WithContext(ctx).Create(&component).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, fmt.Errorf("%w: mesh %q already exists for product %d", ErrConflict, meshID, productID)
	}
	if err != nil {
		return nil, fmt.Errorf("adding component: %w", err)
	}
	return &component, nil
}

// ReplaceAssemblyPlan atomically swaps the product's plan: any existing plan
// and its steps are deleted and the new plan with all steps inserted, in a
// single transaction. Duplicate step numbers fail the whole operation.
func ReplaceAssemblyPlan(ctx context.Context, db *gorm.DB, productID uint, name string, steps []StepInput) (*models.AssemblyPlan, error) {
	plan := models.AssemblyPlan{ProductID: productID, Name: name}
	for _, s := range steps {
		actionType := s.ActionType
		if actionType == "" {
			actionType = "tighten"
		}
		plan.Steps = append(plan.Steps, models.AssemblyStep{
			ComponentID: s.ComponentID,
			StepNumber:  s.StepNumber,
			ActionType:  actionType,
		})
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var planIDs []uint
		if err := tx.Model(&models.AssemblyPlan{}).
			Where("product_id = ?", productID).
			Pluck("id", &planIDs).Error; err != nil {
			return err
		}
		if len(planIDs) > 0 {
			// Steps first so the swap does not depend on the backend
			// enforcing ON DELETE CASCADE.
			if err := tx.Where("plan_id IN ?", planIDs).Delete(&models.AssemblyStep{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", planIDs).Delete(&models.AssemblyPlan{}).Error; err != nil {
				return err
			}
		}
		// Steps are created alongside the plan; the Product and each
		// step's Component must not be auto-saved from their zero values.
		return tx.Omit("Product", "Steps.Component").Create(&plan).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, fmt.Errorf("%w: duplicate step number in plan", ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("replacing assembly plan for product %d: %w", productID, err)
	}
	return &plan, nil
}

// DeleteProduct removes the product and everything it owns: components,
// workstations, plans and their steps, in one transaction.
func DeleteProduct(ctx context.Context, db *gorm.DB, id uint) error {
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var planIDs []uint
		if err := tx.Model(&models.AssemblyPlan{}).
			Where("product_id = ?", id).
			Pluck("id", &planIDs).Error; err != nil {
			return err
		}
		if len(planIDs) > 0 {
			if err := tx.Where("plan_id IN ?", planIDs).Delete(&models.AssemblyStep{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", planIDs).Delete(&models.AssemblyPlan{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.Component{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.Workstation{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Product{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("deleting product %d: %w", id, err)
	}
	return nil
}

// DeleteComponent removes a component unless an assembly step still
// references it, in which case ErrConflict is returned and nothing changes.
func DeleteComponent(ctx context.Context, db *gorm.DB, id uint) error {
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var refs int64
		if err := tx.Model(&models.AssemblyStep{}).
			Where("component_id = ?", id).
			Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return fmt.Errorf("%w: component %d is referenced by %d assembly step(s)", ErrConflict, id, refs)
		}
		result := tx.Delete(&models.Component{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}
	return nil
}
