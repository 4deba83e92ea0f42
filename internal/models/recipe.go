package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Recipe struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Name        string    `gorm:"size:256;not null" json:"name"`
	Text        string    `gorm:"type:text;not null" json:"text"`
	ImageURL    string    `gorm:"size:512" json:"image"`
	CookingTime int       `gorm:"not null;check:cooking_time >= 1" json:"cooking_time"`
	AuthorID    uuid.UUID `gorm:"type:uuid;not null;index" json:"author_id"`

	Author      User               `gorm:"foreignKey:AuthorID" json:"-"`
	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"-"`
	Tags        []Tag              `gorm:"many2many:recipe_tags;constraint:OnDelete:CASCADE" json:"-"`
}

func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

type Tag struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Name      string    `gorm:"size:256;not null" json:"name"`
	Color     string    `gorm:"size:16" json:"color"`
	Slug      string    `gorm:"size:64;uniqueIndex;not null" json:"slug"`
}

func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

type Ingredient struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt       time.Time `json:"created_at"`
	Name            string    `gorm:"size:256;not null;index" json:"name"`
	MeasurementUnit string    `gorm:"size:10;not null" json:"measurement_unit"`
}

func (i *Ingredient) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// RecipeIngredient carries the amount of one ingredient in one recipe.
// Rows are only ever written in bulk when a recipe's ingredient list is
// created or replaced.
type RecipeIngredient struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	RecipeID     uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_recipe_ingredient" json:"recipe_id"`
	IngredientID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_recipe_ingredient" json:"ingredient_id"`
	Amount       float64   `gorm:"not null" json:"amount"`

	Ingredient Ingredient `gorm:"foreignKey:IngredientID;constraint:OnDelete:CASCADE" json:"-"`
}

func (RecipeIngredient) TableName() string {
	return "recipe_ingredients"
}

func (ri *RecipeIngredient) BeforeCreate(tx *gorm.DB) error {
	if ri.ID == uuid.Nil {
		ri.ID = uuid.New()
	}
	return nil
}
