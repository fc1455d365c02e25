package logging

type Category string
type SubCategory string
type ExtraKey string

const (
	General         Category = "General"
	IO              Category = "IO"
	Internal        Category = "Internal"
	Game            Category = "Game"
	Judge           Category = "Judge"
	Redis           Category = "Redis"
	RabbitMQ        Category = "RabbitMQ"
	MongoDB         Category = "MongoDB"
	Validation      Category = "Validation"
	RequestResponse Category = "RequestResponse"
	Prometheus      Category = "Prometheus"
	Websocket       Category = "Websocket"
)

const (
	// General
	Startup         SubCategory = "Startup"
	Shutdown        SubCategory = "Shutdown"
	RateLimiting    SubCategory = "RateLimiting"
	ExternalService SubCategory = "ExternalService"

	// Game
	Join          SubCategory = "Join"
	Leave         SubCategory = "Leave"
	StartRound    SubCategory = "StartRound"
	Stroke        SubCategory = "Stroke"
	FinishDrawing SubCategory = "FinishDrawing"
	SubmitGuess   SubCategory = "SubmitGuess"
	Expiry        SubCategory = "Expiry"
	Rejected      SubCategory = "Rejected"

	// Judge
	GenerateTopic SubCategory = "GenerateTopic"
	JudgeGuess    SubCategory = "JudgeGuess"
	Prompt        SubCategory = "Prompt"

	// Messaging
	Publish SubCategory = "Publish"
	Consume SubCategory = "Consume"
)

const (
	AppName      ExtraKey = "AppName"
	LoggerName   ExtraKey = "Logger"
	ClientIp     ExtraKey = "ClientIp"
	HostIp       ExtraKey = "HostIp"
	Method       ExtraKey = "Method"
	StatusCode   ExtraKey = "StatusCode"
	BodySize     ExtraKey = "BodySize"
	Path         ExtraKey = "Path"
	Latency      ExtraKey = "Latency"
	RequestBody  ExtraKey = "RequestBody"
	ResponseBody ExtraKey = "ResponseBody"
	ErrorMessage ExtraKey = "ErrorMessage"
	RoomID       ExtraKey = "RoomId"
	ConnID       ExtraKey = "ConnId"
	Role         ExtraKey = "Role"
	Round        ExtraKey = "Round"
	EventType    ExtraKey = "EventType"
)
