package datastores

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"
	"unicode"
	"unicode/utf8"

	"gorm.io/gorm"
)

type contactRow struct {
	ID        string     `gorm:"primaryKey;size:26"`
	Firstname string     `gorm:"not null"`
	Lastname  string     `gorm:"not null;index"`
	Email     string     `gorm:"not null;uniqueIndex"`
	Phones    []phoneRow `gorm:"foreignKey:ContactID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (contactRow) TableName() string { return "contacts" }

type phoneRow struct {
	ID        uint   `gorm:"primaryKey"`
	ContactID string `gorm:"not null;index;size:26"`
	Position  int    `gorm:"not null"`
	PhoneType string `gorm:"not null"`
	Number    string `gorm:"not null"`
}

func (phoneRow) TableName() string { return "phones" }

// ContactsGorm implements [ContactsStore] on top of a SQL database.
// Email uniqueness is enforced by a unique index so concurrent writers
// cannot both commit the same email.
type ContactsGorm struct {
	db *gorm.DB
}

var _ ContactsStore = (*ContactsGorm)(nil)

// NewContactsGorm migrates the contacts and phones tables.
func NewContactsGorm(ctx context.Context, db *gorm.DB) (*ContactsGorm, error) {
	if err := db.WithContext(ctx).AutoMigrate(&contactRow{}, &phoneRow{}); err != nil {
		return nil, fmt.Errorf("store: migrate contacts: %w", err)
	}
	return &ContactsGorm{db: db}, nil
}

// DB returns the underlying database handle.
func (s *ContactsGorm) DB() *gorm.DB { return s.db }

func (s *ContactsGorm) Validate(ctx context.Context, c *Contact) (ValidationErrors, error) {
	return validateGorm(s.db.WithContext(ctx), c)
}

func validateGorm(tx *gorm.DB, c *Contact) (ValidationErrors, error) {
	errs := validateContact(c)
	if errs.Has("email", ReasonBlank) {
		return errs, nil
	}
	var count int64
	err := tx.Model(&contactRow{}).
		Where("email = ? AND id <> ?", c.Email, c.ID.String()).
		Count(&count).Error
	if err != nil {
		return nil, fmt.Errorf("store: count emails: %w", err)
	}
	if count > 0 {
		errs.add("email", ReasonTaken)
	}
	return errs, nil
}

func (s *ContactsGorm) Create(ctx context.Context, c *Contact) (*Contact, error) {
	created := c.clone()
	created.ID = newContactID()

	errs, err := s.Validate(ctx, created)
	if err != nil {
		return nil, err
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	row := toContactRow(created)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, translateWriteError("create contact", err)
	}
	return created, nil
}

func (s *ContactsGorm) Update(ctx context.Context, id ContactID, changes *ContactChanges) (*Contact, error) {
	var updated *Contact
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := findContact(tx, id)
		if err != nil {
			return err
		}
		merged := changes.apply(current)
		errs, err := validateGorm(tx, merged)
		if err != nil {
			return err
		}
		if err := errs.err(); err != nil {
			return err
		}

		err = tx.Model(&contactRow{ID: id.String()}).Updates(map[string]any{
			"firstname": merged.Firstname,
			"lastname":  merged.Lastname,
			"email":     merged.Email,
		}).Error
		if err != nil {
			return translateWriteError("update contact", err)
		}

		if changes != nil && changes.Phones != nil {
			if err := tx.Where("contact_id = ?", id.String()).Delete(&phoneRow{}).Error; err != nil {
				return fmt.Errorf("store: delete phones: %w", err)
			}
			if rows := toPhoneRows(id, merged.Phones); len(rows) > 0 {
				if err := tx.Create(&rows).Error; err != nil {
					return fmt.Errorf("store: create phones: %w", err)
				}
			}
		}

		updated = merged
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *ContactsGorm) Delete(ctx context.Context, id ContactID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("contact_id = ?", id.String()).Delete(&phoneRow{}).Error; err != nil {
			return fmt.Errorf("store: delete phones: %w", err)
		}
		res := tx.Where("id = ?", id.String()).Delete(&contactRow{})
		if res.Error != nil {
			return fmt.Errorf("store: delete contact: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrObjectNotFound
		}
		return nil
	})
}

func (s *ContactsGorm) Get(ctx context.Context, id ContactID) (*Contact, error) {
	return findContact(s.db.WithContext(ctx), id)
}

func (s *ContactsGorm) List(ctx context.Context) ([]*Contact, error) {
	var rows []contactRow
	if err := s.db.WithContext(ctx).Preload("Phones", orderPhones).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("store: list contacts: %w", err)
	}
	return fromContactRows(rows)
}

// ListByLetter narrows rows in SQL on the case variants of the first rune
// of letter, then matches and orders them in Go. Database case folding and
// collations differ between drivers and are not used.
func (s *ContactsGorm) ListByLetter(ctx context.Context, letter string) ([]*Contact, error) {
	if letter == "" {
		return []*Contact{}, nil
	}
	first, _ := utf8.DecodeRuneInString(letter)
	var rows []contactRow
	err := s.db.WithContext(ctx).
		Preload("Phones", orderPhones).
		Where(`lastname LIKE ? ESCAPE '\' OR lastname LIKE ? ESCAPE '\' OR lastname LIKE ? ESCAPE '\'`,
			likePrefix(string(unicode.ToLower(first))),
			likePrefix(string(unicode.ToUpper(first))),
			likePrefix(string(unicode.ToTitle(first))),
		).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("store: list contacts by letter: %w", err)
	}

	contacts, err := fromContactRows(rows)
	if err != nil {
		return nil, err
	}
	contacts = slices.DeleteFunc(contacts, func(c *Contact) bool { return !hasLetter(c, letter) })
	sortContacts(contacts)
	return contacts, nil
}

func findContact(tx *gorm.DB, id ContactID) (*Contact, error) {
	var row contactRow
	err := tx.Preload("Phones", orderPhones).Where("id = ?", id.String()).First(&row).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, ErrObjectNotFound
	case err != nil:
		return nil, fmt.Errorf("store: get contact: %w", err)
	}
	return fromContactRow(&row)
}

func orderPhones(tx *gorm.DB) *gorm.DB { return tx.Order("position") }

// translateWriteError turns a unique index violation into a validation error.
func translateWriteError(op string, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ValidationErrors{"email": {ReasonTaken}}
	}
	return fmt.Errorf("store: %s: %w", op, err)
}

func toContactRow(c *Contact) contactRow {
	return contactRow{
		ID:        c.ID.String(),
		Firstname: c.Firstname,
		Lastname:  c.Lastname,
		Email:     c.Email,
		Phones:    toPhoneRows(c.ID, c.Phones),
	}
}

func toPhoneRows(id ContactID, phones []Phone) []phoneRow {
	rows := make([]phoneRow, 0, len(phones))
	for i, p := range phones {
		rows = append(rows, phoneRow{
			ContactID: id.String(),
			Position:  i,
			PhoneType: string(p.Type),
			Number:    p.Number,
		})
	}
	return rows
}

func fromContactRow(row *contactRow) (*Contact, error) {
	id, err := ParseContactID(row.ID)
	if err != nil {
		return nil, fmt.Errorf("store: contact id %q: %w", row.ID, err)
	}
	c := &Contact{
		ID:        id,
		Firstname: row.Firstname,
		Lastname:  row.Lastname,
		Email:     row.Email,
	}
	for _, p := range row.Phones {
		c.Phones = append(c.Phones, Phone{Type: PhoneType(p.PhoneType), Number: p.Number})
	}
	return c, nil
}

func fromContactRows(rows []contactRow) ([]*Contact, error) {
	contacts := make([]*Contact, 0, len(rows))
	for i := range rows {
		c, err := fromContactRow(&rows[i])
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, nil
}
