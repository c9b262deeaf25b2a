package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCard(t *testing.T) {
	t.Parallel()

	card, err := NewCard(CardTypeBasic, "  What is Go?  ", "A programming language", "", []string{"lang", "lang", " basics ", ""})
	require.NoError(t, err)

	assert.NotEmpty(t, card.ID)
	assert.Equal(t, CardTypeBasic, card.Type)
	assert.Equal(t, "What is Go?", card.Front, "front is trimmed")
	assert.Equal(t, "A programming language", card.Back)
	assert.Equal(t, []string{"lang", "basics"}, card.Tags, "tags trimmed, deduped, order preserved")
}

func TestNewCardDefaultsToBasic(t *testing.T) {
	t.Parallel()

	card, err := NewCard("", "front", "back", "", nil)
	require.NoError(t, err)
	assert.Equal(t, CardTypeBasic, card.Type)
}

func TestNewCardRejectsEmptyFront(t *testing.T) {
	t.Parallel()

	_, err := NewCard(CardTypeBasic, "   ", "back", "", nil)
	assert.ErrorIs(t, err, ErrCardFrontEmpty)
}

func TestCardValidate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		card    Card
		wantErr error
	}{
		{
			name: "valid basic card",
			card: Card{ID: "c1", Type: CardTypeBasic, Front: "f", Back: "b"},
		},
		{
			name: "valid cloze card",
			card: Card{ID: "c2", Type: CardTypeCloze, Front: "The capital of {{France}}", Back: "Paris"},
		},
		{
			name:    "missing ID",
			card:    Card{Type: CardTypeBasic, Front: "f", Back: "b"},
			wantErr: ErrCardIDEmpty,
		},
		{
			name:    "unknown type",
			card:    Card{ID: "c3", Type: CardType("audio"), Front: "f", Back: "b"},
			wantErr: ErrCardTypeInvalid,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := tc.card.Validate()
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
