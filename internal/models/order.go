package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusNew        OrderStatus = "new"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

type Order struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	Number          uuid.UUID       `gorm:"type:uuid;uniqueIndex" json:"number"`
	CustomerName    string          `gorm:"not null" json:"customer_name"`
	CustomerPhone   string          `gorm:"not null" json:"customer_phone"`
	DeliveryDate    datatypes.Date  `gorm:"not null" json:"delivery_date"`
	DeliveryTime    string          `gorm:"not null" json:"delivery_time"`
	DeliveryAddress string          `gorm:"not null" json:"delivery_address"`
	TotalPrice      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_price"`
	Status          OrderStatus     `gorm:"type:varchar(20);default:'new'" json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.Number == uuid.Nil {
		o.Number = uuid.New()
	}
	return nil
}

// OrderItem captures one cart line at checkout time. Exactly one of
// ProductID and SolutionID is set; Title and Price are snapshots so the
// order stays intact across later catalog edits.
type OrderItem struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	OrderID    uint            `gorm:"index;not null" json:"order_id"`
	ProductID  *uint           `gorm:"index" json:"product_id,omitempty"`
	SolutionID *uint           `gorm:"index" json:"solution_id,omitempty"`
	Title      string          `gorm:"not null" json:"title"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	Price      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	CreatedAt  time.Time       `json:"created_at"`
}
