package models

// Product is the root of the catalog aggregate. Deleting a product takes
// its components, workstations and assembly plans with it.
type Product struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"size:255;not null"`
	Description string `json:"description"`
	ModelPath   string `json:"model_path" gorm:"size:255"`

	Components    []Component    `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Workstations  []Workstation  `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	AssemblyPlans []AssemblyPlan `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// Component is a named mesh of a product's 3D model. The mesh id is unique
// within one product.
type Component struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	ProductID uint   `json:"product_id" gorm:"not null;index;uniqueIndex:idx_product_mesh"`
	Name      string `json:"name" gorm:"size:255;not null"`
	MeshID    string `json:"mesh_id" gorm:"size:100;not null;uniqueIndex:idx_product_mesh"`
}

// Workstation maps a shop-floor computer to the product assembled at it.
type Workstation struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	ComputerName string `json:"computer_name" gorm:"size:255;uniqueIndex;not null"`
	ProductID    uint   `json:"product_id" gorm:"not null"`
	Description  string `json:"description"`
}

// AssemblyPlan owns an ordered sequence of steps. One active plan per
// product; replacing a plan swaps the whole graph.
type AssemblyPlan struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	ProductID uint   `json:"product_id" gorm:"not null;index"`
	Name      string `json:"name" gorm:"size:255;not null"`

	Product Product        `json:"product"`
	Steps   []AssemblyStep `json:"steps" gorm:"foreignKey:PlanID;constraint:OnDelete:CASCADE"`
}

// AssemblyStep references a component with forced RESTRICT semantics: a
// component still used by a step must not be deletable.
type AssemblyStep struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	PlanID     uint   `json:"plan_id" gorm:"column:plan_id;not null;index;uniqueIndex:idx_plan_step"`
	StepNumber int    `json:"step_number" gorm:"not null;uniqueIndex:idx_plan_step"`
	ActionType string `json:"action_type" gorm:"size:50;not null;default:tighten"`

	ComponentID uint      `json:"component_id" gorm:"not null"`
	Component   Component `json:"component" gorm:"constraint:OnDelete:RESTRICT"`
}
