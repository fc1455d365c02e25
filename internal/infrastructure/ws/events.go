package ws

// Inbound events
const (
	JoinRoom      = "joinRoom"
	StartRound    = "startRound"
	Stroke        = "stroke"
	FinishDrawing = "finishDrawing"
	SubmitGuess   = "submitGuess"
)

// Outbound events
const (
	RoomState              = "roomState"
	ErrorMessage           = "errorMessage"
	ClearCanvas            = "clearCanvas"
	TopicForDrawer         = "topicForDrawer"
	RoundStartedForGuesser = "roundStartedForGuesser"
	DrawingFinished        = "drawingFinished"
	RoundResult            = "roundResult"
)

// errorMessage codes
const (
	CodeInvalidInput    = "invalid_input"
	CodeInvalidRole     = "invalid_role"
	CodeRoomIncomplete  = "room_incomplete"
	CodeNotDrawer       = "not_drawer"
	CodeNotGuesser      = "not_guesser"
	CodeNoActiveTopic   = "no_active_topic"
	CodeEmptyGuess      = "empty_guess"
	CodeDrawingNotDone  = "drawing_not_done"
	CodeRoundPending    = "round_pending"
	CodeJudgmentPending = "judgment_pending"
	CodeTopicFailed     = "topic_failed"
	CodeJudgmentFailed  = "judgment_failed"
	CodeRoomExpired     = "room_expired"
	CodeServerFull      = "server_full"
	CodeRateLimited     = "rate_limited"
	CodeNotJoined       = "not_joined"
)
