package partner

import (
	"errors"
	"testing"

	"github.com/erp/retail/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePhone(t *testing.T) {
	valid := []string{"", "+79991234567", "+70000000000"}
	for _, phone := range valid {
		t.Run("accepts "+phone, func(t *testing.T) {
			assert.True(t, ValidatePhone(phone))
		})
	}

	invalid := []string{
		"89991234567",      // missing +
		"+7999123456",      // 9 digits
		"+799912345678",    // 11 digits
		"79991234567",      // no plus
		"+7 999 123 45 67", // spaces
		"+7-999-123-45-67", // separators
		"+375291234567",    // other country code
		"12345",
		"+7999123456a",
	}
	for _, phone := range invalid {
		t.Run("rejects "+phone, func(t *testing.T) {
			assert.False(t, ValidatePhone(phone))
		})
	}
}

func TestValidateEmail(t *testing.T) {
	valid := []string{"", "i@mail.ru", "ivanov@example.com", "first.last+tag@sub.domain.org", "a_b%c-d@x-y.io"}
	for _, email := range valid {
		t.Run("accepts "+email, func(t *testing.T) {
			assert.True(t, ValidateEmail(email))
		})
	}

	invalid := []string{
		"test",
		"test@",
		"@mail.ru",
		"test@mail",
		"test@mail..ru",
		"test@ mail.ru",
		"тест@почта.рф",
		"user@.com",
		"user@@mail.ru",
		"user.name@mail..com",
		"user@mail.r",
		"user..name@mail.ru",
		".user@mail.ru",
		"user.@mail.ru",
		"user@mail.ru.",
	}
	for _, email := range invalid {
		t.Run("rejects "+email, func(t *testing.T) {
			assert.False(t, ValidateEmail(email))
		})
	}
}

func TestNewClient(t *testing.T) {
	t.Run("creates client successfully", func(t *testing.T) {
		client, err := NewClient(1, "Иванов", "+79991234567", "i@mail.ru")

		require.NoError(t, err)
		assert.Equal(t, 1, client.Number())
		assert.Equal(t, "Иванов", client.FIO())
		assert.Equal(t, "+79991234567", client.Phone())
		assert.Equal(t, "i@mail.ru", client.Email())
		assert.Equal(t, "Client(1: Иванов)", client.String())
	})

	t.Run("normalizes input", func(t *testing.T) {
		client, err := NewClient(2, "  Петров Пётр  ", " +79990000000 ", "  Petrov@Mail.RU ")

		require.NoError(t, err)
		assert.Equal(t, "Петров Пётр", client.FIO())
		assert.Equal(t, "+79990000000", client.Phone())
		assert.Equal(t, "petrov@mail.ru", client.Email())
	})

	t.Run("allows empty contacts", func(t *testing.T) {
		client, err := NewClient(3, "Сидорова", "", "")

		require.NoError(t, err)
		assert.Empty(t, client.Phone())
		assert.Empty(t, client.Email())
	})

	t.Run("fails with invalid phone", func(t *testing.T) {
		client, err := NewClient(1, "Тест", "89991234567", "test@mail.ru")

		assert.Nil(t, client)
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrInvalidPhone))
		assert.Contains(t, err.Error(), "89991234567")

		var de *shared.DomainError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, "phone", de.Field)
		assert.Equal(t, "89991234567", de.Value)
	})

	t.Run("fails with invalid email", func(t *testing.T) {
		client, err := NewClient(1, "Тест", "+79991234567", "user@@mail.ru")

		assert.Nil(t, client)
		assert.True(t, errors.Is(err, shared.ErrInvalidEmail))
		assert.Contains(t, err.Error(), "user@@mail.ru")
	})

	t.Run("fails with empty name", func(t *testing.T) {
		_, err := NewClient(1, "   ", "", "")
		assert.True(t, errors.Is(err, shared.ErrInvalidName))
	})

	t.Run("fails with non-positive number", func(t *testing.T) {
		_, err := NewClient(0, "Тест", "", "")
		assert.True(t, errors.Is(err, shared.ErrInvalidNumber))
	})
}
