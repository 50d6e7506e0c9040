package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound             = errors.New("ressource introuvable")
	ErrUserNotFound         = errors.New("utilisateur introuvable")
	ErrEmailAlreadyExists   = errors.New("l'email est déjà enregistré")
	ErrInvalidInput         = errors.New("données invalides")
	ErrDuplicate            = errors.New("ressource en double")
	ErrUnauthorized         = errors.New("non autorisé")
	ErrForbidden            = errors.New("accès refusé")
	ErrConflict             = errors.New("conflit avec l'état actuel")
	ErrAdjustmentInProgress = errors.New("un ajustement est déjà en cours pour ce produit")
)

// Errores de validación de ajustes. Todos envuelven ErrInvalidInput para que los handlers
// los traduzcan a 400 con errors.Is.
var (
	ErrReasonRequired     = invalid("le motif est obligatoire")
	ErrNegativeTarget     = invalid("la quantité cible ne peut pas être négative")
	ErrNegativeQuantity   = invalid("la quantité saisie ne peut pas être négative")
	ErrSubtractExceeds    = invalid("la quantité à retirer dépasse le stock actuel")
	ErrUnknownAdjustMode  = invalid("mode d'ajustement inconnu")
	ErrNegativeInitial    = invalid("le stock initial ne peut pas être négatif")
	ErrInvalidTaxRate     = invalid("taux de TVA non autorisé")
	ErrInvalidInvoiceLine = invalid("ligne de facture invalide")
)

type validationError struct {
	msg string
}

func invalid(msg string) error { return &validationError{msg: msg} }

func (e *validationError) Error() string { return e.msg }

func (e *validationError) Unwrap() error { return ErrInvalidInput }
