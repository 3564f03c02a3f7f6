package engine

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// Solution is the hidden room, character and weapon drawn at setup
type Solution struct {
	Room      Card `json:"room"`
	Character Card `json:"character"`
	Weapon    Card `json:"weapon"`
}

// Cards returns the solution as a slice in room, character, weapon order
func (s *Solution) Cards() []Card {
	return []Card{s.Room, s.Character, s.Weapon}
}

// Matches reports whether the three names name the solution, ignoring case
func (s *Solution) Matches(room, character, weapon string) bool {
	return strings.EqualFold(s.Room.Name, room) &&
		strings.EqualFold(s.Character.Name, character) &&
		strings.EqualFold(s.Weapon.Name, weapon)
}

// NewDeck builds the full deck: characters first, then weapons, then rooms
func NewDeck(characters, weapons, rooms []string) []Card {
	deck := make([]Card, 0, len(characters)+len(weapons)+len(rooms))
	for _, name := range characters {
		deck = append(deck, Card{Kind: CharacterCard, Name: name})
	}
	for _, name := range weapons {
		deck = append(deck, Card{Kind: WeaponCard, Name: name})
	}
	for _, name := range rooms {
		deck = append(deck, Card{Kind: RoomCard, Name: name})
	}
	return deck
}

// DrawSolution shuffles deck in place and removes the first room, character and
// weapon it finds. The remaining cards are returned in shuffled order.
func DrawSolution(deck []Card, rng *rand.Rand) (*Solution, []Card, error) {
	rng.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})

	var sol Solution
	var haveRoom, haveCharacter, haveWeapon bool
	rest := make([]Card, 0, len(deck))

	for _, c := range deck {
		switch c.Kind {
		case RoomCard:
			if !haveRoom {
				sol.Room, haveRoom = c, true
				continue
			}
		case CharacterCard:
			if !haveCharacter {
				sol.Character, haveCharacter = c, true
				continue
			}
		case WeaponCard:
			if !haveWeapon {
				sol.Weapon, haveWeapon = c, true
				continue
			}
		}
		rest = append(rest, c)
	}

	if !haveRoom || !haveCharacter || !haveWeapon {
		return nil, nil, fmt.Errorf("deck needs at least one room, character and weapon card")
	}
	return &sol, rest, nil
}

// Deal hands out the deck one card at a time, round-robin, until it is empty.
// Earlier players receive the extra cards when the deck does not divide evenly.
func Deal(players []*Player, deck []Card) error {
	if len(players) == 0 {
		return ErrNoPlayers
	}
	for i, c := range deck {
		players[i%len(players)].AddCard(c)
	}
	return nil
}

// FindCard looks up a card by name, ignoring case
func FindCard(cards []Card, name string) (Card, error) {
	name = strings.TrimSpace(name)
	for _, c := range cards {
		if strings.EqualFold(c.Name, name) {
			return c, nil
		}
	}
	return Card{}, fmt.Errorf("%w: %q", ErrCardNotFound, name)
}
