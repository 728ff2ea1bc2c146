package tramites

import (
	"errors"
	"time"
)

// DefaultStatus is the status of a newly created tramite
const DefaultStatus = "pendiente"

var (
	// ErrNotFound is returned when no tramite has the requested id
	ErrNotFound = errors.New("tramite not found")
	// ErrNoFields is returned by Update when the patch sets nothing
	ErrNoFields = errors.New("no fields to update")
	// ErrNameRequired is returned by Create without a name
	ErrNameRequired = errors.New("nombre is required")
)

// Tramite is a service request opened by a customer
type Tramite struct {
	ID          int64     `json:"id"`
	Name        string    `json:"nombre"`
	Description string    `json:"descripcion"`
	Status      string    `json:"estado"`
	Phone       string    `json:"usuario_whatsapp"`
	CreatedAt   time.Time `json:"fecha_creacion"`
	UpdatedAt   time.Time `json:"fecha_actualizacion"`
}

// NewTramite holds the fields accepted on creation
type NewTramite struct {
	Name        string `json:"nombre"`
	Description string `json:"descripcion"`
	Phone       string `json:"usuario_whatsapp"`
}

// TramiteUpdate is a partial update; nil fields are left unchanged
type TramiteUpdate struct {
	Name        *string `json:"nombre"`
	Description *string `json:"descripcion"`
	Status      *string `json:"estado"`
	Phone       *string `json:"usuario_whatsapp"`
}

// Empty reports whether the update sets no field
func (u TramiteUpdate) Empty() bool {
	return u.Name == nil && u.Description == nil && u.Status == nil && u.Phone == nil
}
