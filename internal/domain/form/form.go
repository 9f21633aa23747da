package form

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrNotFound        = errors.New("form: not found")
	ErrMissingContact  = errors.New("form: contact fields must not be empty")
	ErrNoLineItems     = errors.New("form: at least one line item is required")
	ErrInvalidQuantity = errors.New("form: line item quantity must be greater than zero")
)

// Contact carries the customer details collected at form submission.
type Contact struct {
	Name        string `gorm:"size:255;not null" json:"name"`
	Email       string `gorm:"size:255;not null" json:"email"`
	PhoneNumber string `gorm:"size:20;not null" json:"phone_number"`
	City        string `gorm:"size:255;not null" json:"city"`
	Street      string `gorm:"size:255;not null" json:"street"`
	House       string `gorm:"size:255;not null" json:"house"`
	Comment     string `json:"comment,omitempty"`
}

// OrderForm is a customer's cart: contact info plus the selected line items.
// Line items are immutable once a transaction has been opened against the form.
type OrderForm struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Contact Contact `gorm:"embedded" json:"contact"`

	LineItems []LineItem `gorm:"foreignKey:FormID;constraint:OnDelete:CASCADE" json:"line_items"`
}

func (OrderForm) TableName() string { return "order_forms" }

// LineItem binds a requested quantity to a product. The product reference is
// non-owning; deleting a form cascades to its line items only.
type LineItem struct {
	ID        uint  `gorm:"primarykey" json:"id"`
	FormID    uint  `gorm:"index;not null" json:"form_id"`
	ProductID uint  `gorm:"index;not null" json:"product_id"`
	Quantity  int64 `gorm:"not null" json:"quantity"`
}

func (LineItem) TableName() string { return "line_items" }

// New validates contact and line items and assembles an unsaved form.
func New(contact Contact, items []LineItem) (*OrderForm, error) {
	if contact.Name == "" || contact.Email == "" || contact.PhoneNumber == "" ||
		contact.City == "" || contact.Street == "" || contact.House == "" {
		return nil, ErrMissingContact
	}
	if len(items) == 0 {
		return nil, ErrNoLineItems
	}
	for _, it := range items {
		if it.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
	}
	return &OrderForm{Contact: contact, LineItems: items}, nil
}
