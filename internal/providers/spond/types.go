package spond

const providerName = "spond"

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	LoginToken string `json:"loginToken"`
}

type eventResponse struct {
	ID             string             `json:"id"`
	Heading        string             `json:"heading"`
	StartTimestamp string             `json:"startTimestamp"`
	Responses      responsesResponse  `json:"responses"`
	Recipients     recipientsResponse `json:"recipients"`
}

type responsesResponse struct {
	AcceptedIDs    []string `json:"acceptedIds"`
	DeclinedIDs    []string `json:"declinedIds"`
	WaitinglistIDs []string `json:"waitinglistIds"`
	UnansweredIDs  []string `json:"unansweredIds"`
}

type recipientsResponse struct {
	Group groupResponse `json:"group"`
}

type groupResponse struct {
	ID      string           `json:"id"`
	Name    string           `json:"name"`
	Members []memberResponse `json:"members"`
}

type memberResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}
