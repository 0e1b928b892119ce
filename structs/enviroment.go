package structs

type EnviromentModel struct {
	Database     database
	RabbitMQ     rabbitmq
	Log          log
	Notification notification
	Reminder     reminder
	Router       router
}

type database struct {
	Client      string
	MaxIdle     uint
	MaxLifeTime string
	MaxOpenConn uint
	User        string
	Password    string
	Host        string
	Db          string
	Params      string
	Port        string
	LogEnable   int
}

type rabbitmq struct {
	Enable int
	Domain string
}

type log struct {
	ElkEnable      int
	ElkIndex       string
	ElkURL         string
	LogstashEnable int
	LogstashURL    string
	LogstashIndex  string
}

type notification struct {
	APIUrl string
}

type reminder struct {
	Enable        int
	IntervalHours int
}

type router struct {
	Port int
}
