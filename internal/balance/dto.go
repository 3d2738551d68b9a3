package balance

// NetBalanceResponse represents one participant's net balance.
type NetBalanceResponse struct {
	ParticipantID string `json:"participant_id"`
	Name          string `json:"name"`
	Invited       bool   `json:"is_invited_user"`
	Balance       string `json:"balance"`
}

// SettlementResponse represents one resolved debt edge.
type SettlementResponse struct {
	CounterpartyID   string `json:"counterparty_id"`
	CounterpartyName string `json:"counterparty_name"`
	Amount           string `json:"amount"`
	Direction        string `json:"direction"` // owes | owed
}

// ToResponse converts a NetBalance to a NetBalanceResponse DTO.
func (n *NetBalance) ToResponse() *NetBalanceResponse {
	return &NetBalanceResponse{
		ParticipantID: n.ParticipantID.String(),
		Name:          n.Name,
		Invited:       n.Invited,
		Balance:       n.Balance.StringFixed(2),
	}
}

// ToResponse converts a Settlement to a SettlementResponse DTO.
func (s *Settlement) ToResponse() *SettlementResponse {
	return &SettlementResponse{
		CounterpartyID:   s.CounterpartyID.String(),
		CounterpartyName: s.CounterpartyName,
		Amount:           s.Amount.StringFixed(2),
		Direction:        string(s.Direction),
	}
}
