package models

type Stop struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

func NewStop(id, displayName string) Stop {
	return Stop{
		ID:          id,
		DisplayName: displayName,
	}
}

func (s Stop) String() string {
	return s.DisplayName
}
