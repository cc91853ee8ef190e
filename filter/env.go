package filter

/*
Here the Env used in the ad-hoc room filters of the admin tool is defined.
Filters are plain expr expressions, f.e. `Topic == "Go" && Price < 10 && Participants > 2`.
*/

type RoomEnv struct {
	Id           uint
	Name         string
	Description  string
	Topic        string
	Price        float64
	Host         string // host username
	HostEmail    string
	Participants int
	Created      int64 // unix seconds
}
