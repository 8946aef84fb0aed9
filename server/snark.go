package main

import "math/rand"

// snarkyRemarks is the fixed phrase set appended to duplicate replies.
var snarkyRemarks = []string{
	"maybe you should read things before you post.",
	"scroll up, genius.",
	"congrats, you just posted a rerun.",
	"reading is hard, huh?",
	"if only there was a way to see what's already been posted...",
	"deja vu? Or just not paying attention?",
	"this link is like your attention span: short and already used.",
	"I see you like recycling. Try it with your jokes, not your links.",
	"next time, try using your eyes.",
	"you must really like this link. It was here already.",
	"are you auditioning for the role of 'person who doesn't read chat'?",
	"I'd say 'nice find' but someone else found it first.",
	"originality called, it wants its link back.",
	"this link is so nice, you wanted to see it twice.",
	"pro tip: check chat history before posting.",
	"I'm starting to think you're a bot.",
	"at least pretend to read the chat.",
	"Ctrl+F is your friend.",
	"I've seen this one before. So has everyone else.",
	"if you keep this up, I'll start charging a repost fee.",
	"you're not the main character. The link was already posted.",
	"I'm not mad, just disappointed.",
	"you just invented time travel: back to when this was first posted.",
	"I hope you're better at other things than reading chat.",
	"maybe next time, try being first.",
	"You must think this link is a hidden gem. It's not.",
	"This link again? The suspense is killing no one.",
	"Reposting links won't make you popular.",
	"This link is like a rerun of a bad sitcom.",
	"If I had a nickel for every time this was posted...",
	"You just set a new record for déjà vu.",
	"This link is the boomerang of the chat.",
	"Did you mean to copy-paste that? Because you did.",
	"The link fairy has already visited.",
	"You just unlocked the 'Repost Achievement'.",
	"This link is like a zombie. It keeps coming back.",
	"You must really want us to see this. We already did.",
	"This link is the Groundhog Day of chat.",
	"If only there was a prize for reposting.",
	"This link is the sequel nobody asked for.",
	"You just summoned the ghost of links past.",
	"This link is like a boomerang. Please stop throwing it.",
	"You just made history repeat itself.",
	"This link is the echo of the chat.",
	"You just hit Ctrl+V a little too hard.",
	"This link is the chat's favorite déjà vu.",
	"You just made the chat do a double take.",
	"This link is the chat's recurring nightmare.",
	"You just pressed the replay button on this link.",
	"This link is the chat's broken record.",
}

// PickRemark selects one remark using the supplied randomness source. The
// source is injected so tests can seed it deterministically.
func PickRemark(rng *rand.Rand) string {
	return snarkyRemarks[rng.Intn(len(snarkyRemarks))]
}
