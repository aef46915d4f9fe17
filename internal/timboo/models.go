package timboo

import (
	"fmt"
	"time"
)

// Server messages the client checks for
const (
	MessageRegistered        = "success"
	MessageAlreadyRegistered = "User already registered"
	messageBoxOpened         = "ok"
	messageDataReceived      = "Data received successfully"
	messageUpgraded          = "The spinner is upgraded."
)

// RegisterResponse is the reply to register
type RegisterResponse struct {
	Message string `json:"message"`
	UserID  int64  `json:"user_id"`
}

// Box is a time-gated reward container
type Box struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	OpenTime string `json:"open_time"` // HTTP-date of the last opening; empty if never opened
}

type boxesResponse struct {
	Boxes []Box `json:"boxes"`
}

// OpenBoxResponse is the reply to open_box
type OpenBoxResponse struct {
	Message    string `json:"message"`
	RewardText string `json:"reward_text"`
}

// Opened reports whether the server accepted the claim
func (r *OpenBoxResponse) Opened() bool {
	return r.Message == messageBoxOpened
}

// User is the account-level state
type User struct {
	Balance float64 `json:"balance"`
}

// Spinner is the per-account asset whose HP is spent by spinning
type Spinner struct {
	ID            int    `json:"id"`
	Level         int    `json:"level"`
	HP            int    `json:"hp"`
	IsBroken      bool   `json:"isBroken"`
	EndRepairTime string `json:"endRepairTime"` // ISO-8601; set while a repair is running
}

// UnderRepair reports whether a repair timer is running
func (s Spinner) UnderRepair() bool {
	return s.EndRepairTime != ""
}

// Spinnable reports whether the spinner can take spin updates now
func (s Spinner) Spinnable() bool {
	return s.HP > 0 && !s.IsBroken && !s.UnderRepair()
}

// RepairEnds parses EndRepairTime
func (s Spinner) RepairEnds() (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s.EndRepairTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid endRepairTime %q: %w", s.EndRepairTime, err)
	}
	return t, nil
}

// Level is one rung of the upgrade ladder
type Level struct {
	Level int     `json:"level"`
	Price float64 `json:"price"`
}

// Requirement is a sub-condition of a task
type Requirement struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Type       string `json:"type"` // tg_subscribe, website, twitter, boost, league, ...
	TgLink     string `json:"tgLink"`
	WebsiteURL string `json:"websiteUrl"`
	LeagueID   int    `json:"leagueId"`
}

// Task groups requirements under one reward
type Task struct {
	ID           int           `json:"id"`
	Name         string        `json:"name"`
	Reward       float64       `json:"reward"`
	Requirements []Requirement `json:"requirements"`
}

// Section is a titled group of tasks
type Section struct {
	Title string `json:"title"`
	Tasks []Task `json:"tasks"`
}

// InitData is the account snapshot returned by init-data
type InitData struct {
	User     User      `json:"user"`
	Spinners []Spinner `json:"spinners"`
	Levels   []Level   `json:"levels"`
	Sections []Section `json:"sections"`
}

// NextLevel returns the level after current, if there is one
func (d *InitData) NextLevel(current int) (Level, bool) {
	for _, l := range d.Levels {
		if l.Level == current+1 {
			return l, true
		}
	}
	return Level{}, false
}

// Spinner returns the spinner with id
func (d *InitData) Spinner(id int) (Spinner, bool) {
	for _, s := range d.Spinners {
		if s.ID == id {
			return s, true
		}
	}
	return Spinner{}, false
}

// FirstSpinner returns the account's main spinner, the first one listed
func (d *InitData) FirstSpinner() (Spinner, bool) {
	if len(d.Spinners) == 0 {
		return Spinner{}, false
	}
	return d.Spinners[0], true
}

type initDataResponse struct {
	Message  string    `json:"message"`
	InitData *InitData `json:"initData"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// RequirementResponse is the reply to check_requirement
type RequirementResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// AdResponse is the reply to both adsgram calls: the first carries Hash, the second Reward
type AdResponse struct {
	Hash    string  `json:"hash"`
	Reward  float64 `json:"reward"`
	Message string  `json:"message"`
}
