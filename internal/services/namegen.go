package services

import "math/rand"

var nameAdjectives = []string{
	"Happy", "Pink", "Angry", "Calm", "Silly", "Brave", "Gentle", "Wild", "Cool", "Zen",
	"Lucky", "Swift", "Sunny", "Quiet", "Bold", "Lazy", "Witty", "Funky", "Jazzy", "Cosmic",
	"Groovy", "Neon", "Chill", "Fierce", "Royal", "Sneaky", "Sparkly", "Turbo", "Mighty", "Mystic",
}

var nameAnimals = []string{
	"Lion", "Panda", "Tiger", "Elephant", "Dolphin", "Eagle", "Fox", "Bear", "Wolf", "Owl",
	"Falcon", "Otter", "Koala", "Penguin", "Hawk", "Lynx", "Raven", "Jaguar", "Parrot", "Gecko",
	"Cobra", "Shark", "Phoenix", "Dragon", "Panther", "Rabbit", "Moose", "Husky", "Crane", "Bison",
}

// GenerateGuestName returns a random "Adjective Animal" display name for a
// newly created guest.
func GenerateGuestName() string {
	adj := nameAdjectives[rand.Intn(len(nameAdjectives))]
	animal := nameAnimals[rand.Intn(len(nameAnimals))]
	return adj + " " + animal
}
