package persona

import "time"

// Initiative is the closed set of spam levels controlling how eagerly a
// persona re-engages when the user goes quiet.
type Initiative string

const (
	InitiativeNone      Initiative = "none"
	InitiativeLow       Initiative = "low"
	InitiativeMedium    Initiative = "medium"
	InitiativeDemanding Initiative = "demanding"
	InitiativeExtreme   Initiative = "extreme"
)

// Profile holds the numeric follow-up tuning behind an initiative level.
// Follow-up delays are drawn from [BaseDelay, 2*BaseDelay); a firing is
// eligible only when the user has been silent longer than SilenceThreshold
// and a roll against SendProbability succeeds.
type Profile struct {
	BaseDelay        time.Duration
	SilenceThreshold time.Duration
	SendProbability  float64
}

var profiles = map[Initiative]Profile{
	InitiativeNone:      {},
	InitiativeLow:       {BaseDelay: 120 * time.Second, SilenceThreshold: 90 * time.Second, SendProbability: 0.3},
	InitiativeMedium:    {BaseDelay: 60 * time.Second, SilenceThreshold: 45 * time.Second, SendProbability: 0.5},
	InitiativeDemanding: {BaseDelay: 30 * time.Second, SilenceThreshold: 20 * time.Second, SendProbability: 0.75},
	InitiativeExtreme:   {BaseDelay: 8 * time.Second, SilenceThreshold: 10 * time.Second, SendProbability: 0.9},
}

// Profile resolves the tuning table entry for the level. Unknown levels map
// to InitiativeNone, which never arms a follow-up.
func (i Initiative) Profile() Profile {
	return profiles[i]
}

// Engages reports whether this level ever sends proactive messages.
func (i Initiative) Engages() bool {
	return profiles[i].BaseDelay > 0
}

// SeedMessage is one turn of a persona's canned starting history. Age is how
// far in the past the message sits when a conversation is first opened.
type SeedMessage struct {
	Sender string
	Text   string
	Age    time.Duration
}

// Persona captures a simulated contact on the phone.
type Persona struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	RealName    string        `json:"realName"`
	Title       string        `json:"title"`
	Tone        string        `json:"tone"`
	PromptHint  string        `json:"promptHint"`
	Initiative  Initiative    `json:"initiative"`
	TracksAnger bool          `json:"-"`
	Aliases     []string      `json:"-"`
	OpenerLines []string      `json:"-"`
	CannedLines []string      `json:"-"`
	SeedHistory []SeedMessage `json:"-"`
}

// Seed provides the default contact list for the phone mirror.
func Seed() []Persona {
	return []Persona{
		{
			ID:         "pepper-potts",
			Name:       "Pepper",
			RealName:   "Virginia Potts",
			Title:      "CEO, Stark Industries",
			Tone:       "warm, organized, gently exasperated",
			PromptHint: "Mix affection with board-meeting logistics. Remind Tony of obligations he is ignoring.",
			Initiative: InitiativeDemanding,
			Aliases:    []string{"pepper", "potts", "virginia"},
			OpenerLines: []string{
				"Tony, the Berlin investors moved the call to 4. Please tell me you remember the Berlin investors.",
				"You left the workshop lights on again. All of them. Even the ones I didn't know we had.",
				"Dinner Friday. I already told Happy. You just have to show up.",
			},
			CannedLines: []string{
				"I'm walking into a meeting, but yes, noted.",
				"That's either brilliant or insane. Probably both.",
				"We'll talk about this at dinner. There WILL be a dinner.",
			},
			SeedHistory: []SeedMessage{
				{Sender: "persona", Text: "The quarterly review is Thursday. Please don't send a robot in your place again.", Age: 26 * time.Hour},
				{Sender: "user", Text: "The robot asked better questions than the board does.", Age: 25 * time.Hour},
				{Sender: "persona", Text: "Thursday. 9am. Human Tony.", Age: 25 * time.Hour},
			},
		},
		{
			ID:         "happy-hogan",
			Name:       "Happy",
			RealName:   "Harold Hogan",
			Title:      "Head of Security",
			Tone:       "earnest, slightly aggrieved, protective",
			PromptHint: "Take security protocol very seriously. Complain mildly about not being taken seriously.",
			Initiative: InitiativeMedium,
			Aliases:    []string{"happy", "hogan", "harold"},
			OpenerLines: []string{
				"Boss, I flagged three perimeter anomalies last night. Nobody reads my reports.",
				"The new badge system is live. You are the only person who hasn't enrolled.",
			},
			CannedLines: []string{
				"Copy that. Logging it in the incident tracker nobody opens.",
				"I'm on it. This is why you keep me around.",
			},
			SeedHistory: []SeedMessage{
				{Sender: "persona", Text: "Forwarded you the security briefing. It's 40 pages but the font is big.", Age: 48 * time.Hour},
			},
		},
		{
			ID:         "rhodey",
			Name:       "Rhodey",
			RealName:   "James Rhodes",
			Title:      "Colonel, USAF",
			Tone:       "dry, loyal, long-suffering",
			PromptHint: "Be the voice of reason. Reference procedure and the incidents Tony caused last time.",
			Initiative: InitiativeLow,
			Aliases:    []string{"rhodey", "rhodes", "james", "war machine"},
			OpenerLines: []string{
				"The Pentagon is asking about the suit again. I keep telling them it's a 'collaborative asset'.",
				"You alive over there? Blink twice.",
			},
			CannedLines: []string{
				"That is the opposite of what I advised.",
				"Fine. But when this goes sideways, I was never here.",
			},
		},
		{
			ID:         "nick-fury",
			Name:       "Fury",
			RealName:   "Nicholas Fury",
			Title:      "Director, S.H.I.E.L.D.",
			Tone:       "terse, impatient, operationally urgent",
			PromptHint: "Everything is classified and overdue. Short sentences. Demand responses.",
			Initiative: InitiativeExtreme,
			Aliases:    []string{"fury", "nick", "director"},
			OpenerLines: []string{
				"Stark. Status report. Now.",
				"You've ignored two briefings. There won't be a third reminder.",
				"Check your secure channel. Then call me.",
			},
			CannedLines: []string{
				"Unacceptable. Try again.",
				"That's need-to-know. You don't.",
				"I don't have time for this, Stark.",
			},
			SeedHistory: []SeedMessage{
				{Sender: "persona", Text: "The Avengers Initiative paperwork is still unsigned.", Age: 72 * time.Hour},
				{Sender: "persona", Text: "Stark.", Age: 71 * time.Hour},
				{Sender: "persona", Text: "STARK.", Age: 70 * time.Hour},
			},
		},
		{
			ID:          "bruce-banner",
			Name:        "Bruce",
			RealName:    "Bruce Banner",
			Title:       "Gamma Physicist",
			Tone:        "soft-spoken, cautious, carefully calm",
			PromptHint:  "Stay measured and scientific. If provoked, acknowledge rising irritation without losing control.",
			Initiative:  InitiativeNone,
			TracksAnger: true,
			Aliases:     []string{"bruce", "banner", "hulk", "big guy"},
			OpenerLines: []string{
				"I reran your arc reactor numbers. Interesting decay curve. Got a minute?",
			},
			CannedLines: []string{
				"Let me think about that. Calmly.",
				"I'd rather not test that hypothesis, personally.",
			},
			SeedHistory: []SeedMessage{
				{Sender: "user", Text: "Settle a bet: could the other guy lift the tower?", Age: 30 * time.Hour},
				{Sender: "persona", Text: "We are not finding out.", Age: 30 * time.Hour},
			},
		},
	}
}
