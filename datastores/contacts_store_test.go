package datastores_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	ds "github.com/oaiiae/contacts-api/datastores"
)

func newGormStore(tb testing.TB) *ds.ContactsGorm {
	tb.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(tb, err)
	sqlDB, err := db.DB()
	require.NoError(tb, err)
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	store, err := ds.NewContactsGorm(context.Background(), db)
	require.NoError(tb, err)
	return store
}

func eachStore(t *testing.T, test func(t *testing.T, store ds.ContactsStore)) {
	t.Run("inmem", func(t *testing.T) { test(t, ds.NewContactsInmem()) })
	t.Run("gorm", func(t *testing.T) { test(t, newGormStore(t)) })
}

func mustCreate(t *testing.T, store ds.ContactsStore, firstname, lastname, email string) *ds.Contact {
	t.Helper()
	c, err := store.Create(context.Background(), &ds.Contact{
		Firstname: firstname,
		Lastname:  lastname,
		Email:     email,
	})
	require.NoError(t, err)
	return c
}

func count(t *testing.T, store ds.ContactsStore) int {
	t.Helper()
	cs, err := store.List(context.Background())
	require.NoError(t, err)
	return len(cs)
}

func ptr[T any](v T) *T { return &v }

func TestValidate(t *testing.T) {
	eachStore(t, func(t *testing.T, store ds.ContactsStore) {
		ctx := context.Background()

		errs, err := store.Validate(ctx, &ds.Contact{Firstname: "Aaron", Lastname: "Sumner", Email: "tester@example.com"})
		require.NoError(t, err)
		assert.Empty(t, errs)

		for _, field := range []string{"firstname", "lastname", "email"} {
			t.Run("without "+field, func(t *testing.T) {
				c := &ds.Contact{Firstname: "Aaron", Lastname: "Sumner", Email: "tester@example.com"}
				switch field {
				case "firstname":
					c.Firstname = ""
				case "lastname":
					c.Lastname = "  "
				case "email":
					c.Email = ""
				}
				errs, err := store.Validate(ctx, c)
				require.NoError(t, err)
				assert.Equal(t, []string{field}, errs.Fields())
				assert.True(t, errs.Has(field, ds.ReasonBlank))
				assert.ErrorIs(t, errs, ds.ErrMissingField)
			})
		}

		t.Run("duplicate email", func(t *testing.T) {
			mustCreate(t, store, "Aaron", "Sumner", "aaron@example.com")
			errs, err := store.Validate(ctx, &ds.Contact{Firstname: "Other", Lastname: "Person", Email: "aaron@example.com"})
			require.NoError(t, err)
			assert.Equal(t, []string{ds.ReasonTaken}, errs["email"])
			assert.ErrorIs(t, errs, ds.ErrDuplicateEmail)
			assert.NotErrorIs(t, errs, ds.ErrMissingField)
		})

		t.Run("email is case sensitive", func(t *testing.T) {
			errs, err := store.Validate(ctx, &ds.Contact{Firstname: "Other", Lastname: "Person", Email: "AARON@example.com"})
			require.NoError(t, err)
			assert.Empty(t, errs)
		})

		t.Run("phone type", func(t *testing.T) {
			errs, err := store.Validate(ctx, &ds.Contact{
				Firstname: "Jane", Lastname: "Smith", Email: "jane@example.com",
				Phones: []ds.Phone{{Type: ds.PhoneHome, Number: "555-0100"}, {Type: "fax", Number: "555-0101"}},
			})
			require.NoError(t, err)
			assert.Equal(t, []string{"phones[1].phone_type"}, errs.Fields())
		})
	})
}

func TestCreate(t *testing.T) {
	eachStore(t, func(t *testing.T, store ds.ContactsStore) {
		ctx := context.Background()

		phones := []ds.Phone{
			{Type: ds.PhoneHome, Number: "555-0100"},
			{Type: ds.PhoneWork, Number: "555-0101"},
			{Type: ds.PhoneMobile, Number: "555-0102"},
		}
		created, err := store.Create(ctx, &ds.Contact{Firstname: "Jane", Lastname: "Smith", Email: "jane@example.com", Phones: phones})
		require.NoError(t, err)
		assert.NotEqual(t, ds.ContactID{}, created.ID)

		got, err := store.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created, got)
		assert.Equal(t, phones, got.Phones)

		_, err = store.Create(ctx, &ds.Contact{Firstname: "Other", Lastname: "Smith", Email: "jane@example.com"})
		var errs ds.ValidationErrors
		require.ErrorAs(t, err, &errs)
		assert.True(t, errs.Has("email", ds.ReasonTaken))
		assert.Equal(t, 1, count(t, store))

		_, err = store.Create(ctx, &ds.Contact{Lastname: "Smith", Email: "other@example.com"})
		require.ErrorIs(t, err, ds.ErrMissingField)
		assert.Equal(t, 1, count(t, store))
	})
}

func TestCreateConcurrentSameEmail(t *testing.T) {
	eachStore(t, func(t *testing.T, store ds.ContactsStore) {
		const n = 16
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			succeeded int
			taken     int
		)
		for range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := store.Create(context.Background(), &ds.Contact{Firstname: "Jane", Lastname: "Smith", Email: "jane@example.com"})
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					succeeded++
				case assert.ErrorIs(t, err, ds.ErrDuplicateEmail):
					taken++
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, succeeded)
		assert.Equal(t, n-1, taken)
		assert.Equal(t, 1, count(t, store))
	})
}

func TestUpdate(t *testing.T) {
	eachStore(t, func(t *testing.T, store ds.ContactsStore) {
		ctx := context.Background()
		jane := mustCreate(t, store, "Jane", "Smith", "jane@example.com")
		mustCreate(t, store, "John", "Doe", "john@example.com")

		updated, err := store.Update(ctx, jane.ID, &ds.ContactChanges{
			Lastname: ptr("Jones"),
			Phones:   &[]ds.Phone{{Type: ds.PhoneMobile, Number: "555-0199"}},
		})
		require.NoError(t, err)
		assert.Equal(t, "Jane Jones", updated.Name())
		assert.Equal(t, "jane@example.com", updated.Email)

		got, err := store.Get(ctx, jane.ID)
		require.NoError(t, err)
		assert.Equal(t, updated, got)

		t.Run("keeps its own email", func(t *testing.T) {
			_, err := store.Update(ctx, jane.ID, &ds.ContactChanges{Email: ptr("jane@example.com")})
			require.NoError(t, err)
		})

		t.Run("invalid payload leaves record unchanged", func(t *testing.T) {
			_, err := store.Update(ctx, jane.ID, &ds.ContactChanges{
				Firstname: ptr(""),
				Email:     ptr("john@example.com"),
				Phones:    &[]ds.Phone{},
			})
			var errs ds.ValidationErrors
			require.ErrorAs(t, err, &errs)
			assert.True(t, errs.Has("firstname", ds.ReasonBlank))
			assert.True(t, errs.Has("email", ds.ReasonTaken))

			after, err := store.Get(ctx, jane.ID)
			require.NoError(t, err)
			assert.Equal(t, got, after)
		})

		t.Run("email can move to a freed address", func(t *testing.T) {
			_, err := store.Update(ctx, jane.ID, &ds.ContactChanges{Email: ptr("jane.jones@example.com")})
			require.NoError(t, err)
			mustCreate(t, store, "Someone", "Else", "jane@example.com")
		})

		t.Run("not found", func(t *testing.T) {
			_, err := store.Update(ctx, ds.ContactID{}, &ds.ContactChanges{Firstname: ptr("x")})
			assert.ErrorIs(t, err, ds.ErrObjectNotFound)
		})
	})
}

func TestDelete(t *testing.T) {
	eachStore(t, func(t *testing.T, store ds.ContactsStore) {
		ctx := context.Background()
		first := mustCreate(t, store, "Jane", "Smith", "jane@example.com")
		created, err := store.Create(ctx, &ds.Contact{
			Firstname: "Tim", Lastname: "Jones", Email: "tjones@example.com",
			Phones: []ds.Phone{{Type: ds.PhoneHome, Number: "555-0100"}},
		})
		require.NoError(t, err)
		last := mustCreate(t, store, "John", "Johnson", "jjohnson@example.com")

		require.NoError(t, store.Delete(ctx, created.ID))
		assert.Equal(t, 2, count(t, store))

		_, err = store.Get(ctx, created.ID)
		require.ErrorIs(t, err, ds.ErrObjectNotFound)
		require.ErrorIs(t, store.Delete(ctx, created.ID), ds.ErrObjectNotFound)

		for _, c := range []*ds.Contact{first, last} {
			got, err := store.Get(ctx, c.ID)
			require.NoError(t, err)
			assert.Equal(t, c, got)
		}

		// the email is free again and the new contact starts without phones
		again := mustCreate(t, store, "Tim", "Jones", "tjones@example.com")
		assert.Empty(t, again.Phones)
	})
}

func TestDeleteRemovesPhones(t *testing.T) {
	store := newGormStore(t)
	ctx := context.Background()
	created, err := store.Create(ctx, &ds.Contact{
		Firstname: "Tim", Lastname: "Jones", Email: "tjones@example.com",
		Phones: []ds.Phone{{Type: ds.PhoneHome, Number: "555-0100"}, {Type: ds.PhoneWork, Number: "555-0101"}},
	})
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, created.ID))

	var phones int64
	require.NoError(t, store.DB().Table("phones").Count(&phones).Error)
	assert.Zero(t, phones)
}

func TestListByLetter(t *testing.T) {
	eachStore(t, func(t *testing.T, store ds.ContactsStore) {
		ctx := context.Background()
		smith := mustCreate(t, store, "John", "Smith", "jsmith@example.com")
		jones := mustCreate(t, store, "Tim", "Jones", "tjones@example.com")
		johnson := mustCreate(t, store, "John", "Johnson", "jjohnson@example.com")

		got, err := store.ListByLetter(ctx, "J")
		require.NoError(t, err)
		assert.Equal(t, []*ds.Contact{johnson, jones}, got)
		assert.NotContains(t, got, smith)

		got, err = store.ListByLetter(ctx, "j")
		require.NoError(t, err)
		assert.Equal(t, []*ds.Contact{johnson, jones}, got)

		got, err = store.ListByLetter(ctx, "s")
		require.NoError(t, err)
		assert.Equal(t, []*ds.Contact{smith}, got)

		got, err = store.ListByLetter(ctx, "jO")
		require.NoError(t, err)
		assert.Equal(t, []*ds.Contact{johnson, jones}, got)

		for _, letter := range []string{"", "Q", "%", "_"} {
			got, err := store.ListByLetter(ctx, letter)
			require.NoError(t, err)
			assert.NotNil(t, got)
			assert.Empty(t, got, "letter %q", letter)
		}
	})
}

func TestListByLetterFoldsNonASCII(t *testing.T) {
	eachStore(t, func(t *testing.T, store ds.ContactsStore) {
		ctx := context.Background()
		emile := mustCreate(t, store, "Zola", "Émile", "emile@example.com")
		mustCreate(t, store, "Ed", "Evans", "evans@example.com")

		for _, letter := range []string{"é", "É"} {
			got, err := store.ListByLetter(ctx, letter)
			require.NoError(t, err)
			assert.Equal(t, []*ds.Contact{emile}, got, "letter %q", letter)
		}
	})
}

func TestListByLetterSortsBytewise(t *testing.T) {
	eachStore(t, func(t *testing.T, store ds.ContactsStore) {
		zander := mustCreate(t, store, "Amy", "zander", "zander@example.com")
		zed := mustCreate(t, store, "Bob", "Zed", "zed@example.com")

		got, err := store.ListByLetter(context.Background(), "z")
		require.NoError(t, err)
		assert.Equal(t, []*ds.Contact{zed, zander}, got)
	})
}

func TestListByLetterSortsByFirstname(t *testing.T) {
	eachStore(t, func(t *testing.T, store ds.ContactsStore) {
		tim := mustCreate(t, store, "Tim", "Jones", "tjones@example.com")
		ann := mustCreate(t, store, "Ann", "Jones", "ajones@example.com")

		got, err := store.ListByLetter(context.Background(), "J")
		require.NoError(t, err)
		assert.Equal(t, []*ds.Contact{ann, tim}, got)
	})
}

func TestReturnedContactsAreCopies(t *testing.T) {
	eachStore(t, func(t *testing.T, store ds.ContactsStore) {
		ctx := context.Background()
		created, err := store.Create(ctx, &ds.Contact{
			Firstname: "Jane", Lastname: "Smith", Email: "jane@example.com",
			Phones: []ds.Phone{{Type: ds.PhoneHome, Number: "555-0100"}},
		})
		require.NoError(t, err)
		created.Firstname = "Mutated"
		created.Phones[0].Number = "000"

		got, err := store.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Jane", got.Firstname)
		assert.Equal(t, "555-0100", got.Phones[0].Number)
	})
}

func TestName(t *testing.T) {
	c := &ds.Contact{Firstname: "Jane", Lastname: "Smith"}
	assert.Equal(t, "Jane Smith", c.Name())
}

func TestParseContactID(t *testing.T) {
	store := ds.NewContactsInmem()
	c := mustCreate(t, store, "Jane", "Smith", "jane@example.com")

	id, err := ds.ParseContactID(c.ID.String())
	require.NoError(t, err)
	assert.Equal(t, c.ID, id)

	_, err = ds.ParseContactID("short")
	assert.Error(t, err)
}
