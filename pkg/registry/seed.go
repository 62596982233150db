package registry

// DefaultCatalog returns a fresh copy of the built-in Mergington activity catalog.
func DefaultCatalog() Catalog {
	return Catalog{
		"Chess Club": {
			Description:     "Learn strategies and compete in chess tournaments",
			Schedule:        "Fridays, 3:30 PM - 5:00 PM",
			MaxParticipants: 12,
			Participants:    []string{"michael@mergington.edu", "daniel@mergington.edu"},
		},
		"Programming Class": {
			Description:     "Learn programming fundamentals and build software projects",
			Schedule:        "Tuesdays and Thursdays, 3:30 PM - 4:30 PM",
			MaxParticipants: 20,
			Participants:    []string{"emma@mergington.edu", "sophia@mergington.edu"},
		},
		"Gym Class": {
			Description:     "Physical education and sports activities",
			Schedule:        "Mondays, Wednesdays, Fridays, 2:00 PM - 3:00 PM",
			MaxParticipants: 30,
			Participants:    []string{"john@mergington.edu", "olivia@mergington.edu"},
		},
		"Basketball Team": {
			Description:     "Compete in varsity and intramural basketball leagues",
			Schedule:        "Mondays and Wednesdays, 4:00 PM - 5:30 PM",
			MaxParticipants: 15,
			Participants:    []string{"alex@mergington.edu"},
		},
		"Tennis Club": {
			Description:     "Learn tennis techniques and participate in matches",
			Schedule:        "Tuesdays and Thursdays, 4:00 PM - 5:30 PM",
			MaxParticipants: 12,
			Participants:    []string{"james@mergington.edu", "sarah@mergington.edu"},
		},
		"Art Studio": {
			Description:     "Explore painting, drawing, and visual arts",
			Schedule:        "Wednesdays, 3:30 PM - 5:00 PM",
			MaxParticipants: 18,
			Participants:    []string{"isabella@mergington.edu"},
		},
		"Drama Club": {
			Description:     "Perform in theatrical productions and develop acting skills",
			Schedule:        "Fridays, 4:00 PM - 5:30 PM",
			MaxParticipants: 25,
			Participants:    []string{"lucas@mergington.edu", "ava@mergington.edu"},
		},
		"Debate Team": {
			Description:     "Develop critical thinking and public speaking through competitive debate",
			Schedule:        "Mondays and Thursdays, 3:30 PM - 4:30 PM",
			MaxParticipants: 16,
			Participants:    []string{"grace@mergington.edu"},
		},
		"Science Olympiad": {
			Description:     "Compete in science competitions and experiments",
			Schedule:        "Mondays, Wednesdays, Fridays, 4:00 PM - 5:00 PM",
			MaxParticipants: 15,
			Participants:    []string{"noah@mergington.edu", "mia@mergington.edu"},
		},
	}
}
