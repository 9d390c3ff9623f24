package structs

// MessageApi is a plaintext handed to a user.
type MessageApi struct {
	Message string `json:"message"`
}

// SendMessageApi asks a user to send a message through the network.
type SendMessageApi struct {
	Message           string `json:"message"`
	DestinationUserID int    `json:"destinationUserId"`
}

// SendResultApi describes a message that left a user.
type SendResultApi struct {
	Circuit []int `json:"circuit"`
}

// ResultApi wraps the debug getters' responses.
type ResultApi[T any] struct {
	Result T `json:"result"`
}
