package app

// Character is a character of the user's game account.
type Character struct {
	ID    int64
	Name  string
	World string
}
