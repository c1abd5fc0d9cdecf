package handlers

const (
	ackComplete        = "✅ Marked goals as complete for %s on %s."
	ackIncomplete      = "❌ Marked goals as incomplete for %s on %s."
	ackAlreadyRecorded = "🤔 %s, today is already recorded. Use !mark <YYYY-MM-DD> to override a past day."
	ackBadDate         = "❌ Could not read that date. Format: !mark YYYY-MM-DD [complete|incomplete]"
	ackBadStatus       = "❌ Status must be 'complete' or 'incomplete'."
	ackStoreFailure    = "⚠️ Could not save that right now, please try again."
	ackCheckDone       = "✅ Checked and ran any pending scheduled tasks!"
	ackCheckFailed     = "⚠️ Task check hit an error, see the logs."
)

const helpText = `📖 Commandant commands:
goals complete / goals completed - mark today's goals done (before 4am counts for yesterday)
goals incomplete / goals failed - mark today's goals missed
!prev - mark yesterday complete
!mark <YYYY-MM-DD> [complete|incomplete] - override a specific day
!weekly - leaderboard since Monday
!monthly - rolling 30-day leaderboard
!alltime - all-time leaderboard
!check-tasks - run any pending scheduled tasks now`
