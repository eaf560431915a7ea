package chat

import (
	"context"
	"log"
	"time"
)

// Follow-up scheduling. Each session carries at most one pending timer;
// arming again cancels the previous one. A firing re-checks eligibility
// (silence threshold + probability gate) so cadence stays organic rather
// than metronomic, and always re-arms afterwards.

func (s *Service) armFollowUpLocked(sess *session) {
	s.cancelFollowUpLocked(sess)
	if !sess.active || !sess.p.Initiative.Engages() {
		return
	}

	profile := sess.p.Initiative.Profile()
	delay := profile.BaseDelay + time.Duration(s.randFloat()*float64(profile.BaseDelay))
	personaID := sess.personaID
	epoch := sess.epoch
	sess.followUp = s.after(delay, func() {
		s.fireFollowUp(personaID, epoch)
	})
}

func (s *Service) cancelFollowUpLocked(sess *session) {
	if sess.followUp != nil {
		sess.followUp.Stop()
		sess.followUp = nil
	}
}

func (s *Service) fireFollowUp(personaID string, epoch int) {
	s.mu.Lock()
	sess := s.sessions[personaID]
	if sess == nil || !sess.active || sess.epoch != epoch {
		s.mu.Unlock()
		return
	}
	sess.followUp = nil

	profile := sess.p.Initiative.Profile()
	silence := s.now().Sub(sess.lastUserMessageAt)
	eligible := silence >= profile.SilenceThreshold && s.randFloat() < profile.SendProbability
	if !eligible {
		s.armFollowUpLocked(sess)
		s.mu.Unlock()
		return
	}

	p := sess.p
	history := copyMessages(sess.messages)
	s.mu.Unlock()

	fragments, err := s.gen.FollowUp(context.Background(), p, history, silence)
	if err != nil {
		// A transient failure never stops future engagement.
		log.Printf("[chat] follow-up generation failed for persona=%s: %v", personaID, err)
		s.mu.Lock()
		if sess := s.sessions[personaID]; sess != nil && sess.epoch == epoch {
			s.armFollowUpLocked(sess)
		}
		s.mu.Unlock()
		return
	}

	s.appendPersonaFragments(personaID, epoch, fragments, true, false)
}
