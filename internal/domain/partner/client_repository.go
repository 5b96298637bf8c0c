package partner

// ClientRepository defines the interface for client persistence
type ClientRepository interface {
	// AddClient appends a client and persists the client collection
	AddClient(client *Client) error

	// CreateClient builds a client under the next free number and adds it
	CreateClient(fio, phone, email string) (*Client, error)

	// FindClient finds a client by number
	FindClient(number int) (*Client, bool)

	// Clients returns a copy of all clients in insertion order
	Clients() []*Client

	// NextClientNumber returns the number the next created client will get
	NextClientNumber() int
}
