package unregister

type Input struct {
	Activity string `json:"activity"`
	Email    string `json:"email"`
}

type Output struct {
	Message string `json:"message"`
}
