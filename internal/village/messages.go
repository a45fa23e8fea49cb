/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package village

// Narrative shown to every member after each event.
const (
	msgCreated      = "Room %s created. Waiting for players."
	msgJoined       = "%s joined the room."
	msgLeft         = "%s left the room."
	msgStarted      = "The game has begun! Night falls."
	msgKilled       = "In the dead of night, %s was killed!"
	msgSaved        = "The doctor saved %s!"
	msgNobodyDied   = "Nobody died tonight."
	msgExecuted     = "By vote, %s was executed. Their role: %s."
	msgTie          = "The vote ended in a tie. Nobody was executed."
	msgVillagersWin = "The vampires have been destroyed. The villagers win!"
	msgVampiresWin  = "The vampires have taken over the village. The vampires win!"
)
