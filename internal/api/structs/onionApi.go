package structs

// OnionApi carries one ciphertext blob between relays. message is base64 in JSON.
type OnionApi struct {
	Message []byte `json:"message"`
}
