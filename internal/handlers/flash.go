package handlers

import (
	"github.com/gin-contrib/sessions"
	log "github.com/sirupsen/logrus"
)

const flashKey = "flash"

func setFlash(sess sessions.Session, message string) {
	sess.Set(flashKey, message)
	if err := sess.Save(); err != nil {
		log.WithError(err).Error("failed to save flash session")
	}
}

// takeFlash returns the pending flash message, clearing it so it only
// shows once.
func takeFlash(sess sessions.Session) string {
	message, _ := sess.Get(flashKey).(string)
	if message != "" {
		sess.Delete(flashKey)
		if err := sess.Save(); err != nil {
			log.WithError(err).Error("failed to save flash session")
		}
	}
	return message
}
