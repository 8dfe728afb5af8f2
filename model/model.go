package model

// Msg is the websocket message envelope exchanged with the front end.
type Msg struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// Env carries the construction parameters of the rod solver. It is the
// payload of an "env" message.
type Env struct {
	N1 int `json:"n1"` // node count of layer 1
	N2 int `json:"n2"` // node count of layer 2

	L    float64 `json:"l"`     // rod length, m
	TEnd float64 `json:"t_end"` // end time, s
	Tau  float64 `json:"tau"`   // time step, s

	Lambda1 float64 `json:"lambda_1"` // conductivity, W/(m·K)
	Lambda2 float64 `json:"lambda_2"`
	Rho1    float64 `json:"rho_1"` // density, kg/m³
	Rho2    float64 `json:"rho_2"`
	C1      float64 `json:"c_1"` // specific heat, J/(kg·K)
	C2      float64 `json:"c_2"`

	T0 float64 `json:"t_0"` // initial uniform temperature
	Tl float64 `json:"t_l"` // left boundary temperature
	Tr float64 `json:"t_r"` // right boundary temperature

	Policy string `json:"policy"` // "average" or "flux"
}

// ProfileData is one temperature profile frame pushed to the front end.
type ProfileData struct {
	X           []float64 `json:"x"`
	Temperature []float64 `json:"temperature"`
	Step        int       `json:"step"`  // completed steps
	Steps       int       `json:"steps"` // total steps of the march
}
