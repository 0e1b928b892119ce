package main

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"mealtracker-go-worker/controllers/check"
	mealController "mealtracker-go-worker/controllers/meal"
	"mealtracker-go-worker/controllers/screen"
	"mealtracker-go-worker/database"
	"mealtracker-go-worker/enums"
	"mealtracker-go-worker/models"
	"mealtracker-go-worker/repository"
	"mealtracker-go-worker/router"
	"mealtracker-go-worker/services/favourites"
	"mealtracker-go-worker/services/home"
	"mealtracker-go-worker/services/notification"
	"mealtracker-go-worker/services/rabbitmq"
	"mealtracker-go-worker/services/reminder"
	"mealtracker-go-worker/services/scheduler"
	"mealtracker-go-worker/services/seed"
	"mealtracker-go-worker/services/trackLog"
	"mealtracker-go-worker/services/tracking"
	"mealtracker-go-worker/structs"
	"mealtracker-go-worker/utils"

	logLib "mealtracker-go-worker/services/log"

	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

func main() {

	// 初始化 env
	var envService utils.EnvService
	envService.InitEnv()
	fmt.Println("參數初始化成功...")

	// 資料庫 handle 在這裡建立，之後一路用注入的傳下去
	handle, err := database.Open(utils.EnvConfig)
	if err != nil {
		log.Fatalf("database open fail: %s", err.Error())
	}
	defer handle.Close()
	if err := handle.Migrate(); err != nil {
		log.Fatalf("database migrate fail: %s", err.Error())
	}
	trackLog.LogTrackInit()
	_ = insertActivityLog(handle, enums.LogNameInit, "mealtracker-worker 初始化")

	// 空資料庫塞範例資料
	seedService := seed.SeedService{Handle: handle}
	if seeded, err := seedService.Run(); err != nil {
		trackLog.Error("seed fail: "+err.Error(), true)
	} else if seeded {
		_ = insertActivityLog(handle, enums.LogNameSeed, "範例資料建立")
	}

	repo := repository.NewGormMealsRepository(handle)
	homeService := home.NewHomeService(repo)
	favouritesService := favourites.NewFavouritesService(repo)
	trackingService := tracking.NewTrackingService(repo)

	var conn *rabbitmq.Connection
	if utils.EnvConfig.RabbitMQ.Enable == 1 {
		conn = rabbitmq.NewConnection("mealtracker", []string{enums.QueueReminder})
		if err := conn.Connect(); err != nil {
			panic(err)
		}
		if err := conn.BindQueue(); err != nil {
			panic(err)
		}
	}

	notifier := notification.NewService(conn, utils.EnvConfig.Notification.APIUrl)
	reminderService := reminder.NewReminderService(notifier)

	// 每日提醒：同名重複註冊不會疊加排程
	sched := scheduler.New()
	if utils.EnvConfig.Reminder.Enable == 1 {
		interval := 24 * time.Hour
		if utils.EnvConfig.Reminder.IntervalHours > 0 {
			interval = time.Duration(utils.EnvConfig.Reminder.IntervalHours) * time.Hour
		}
		sched.RegisterPeriodic(enums.JobDailyReminder, interval, func() error {
			err := reminderService.Run()
			_ = insertActivityLog(handle, enums.LogNameReminder, map[string]interface{}{"result": err == nil})
			return err
		})
	}
	defer sched.StopAll()

	deps := router.Dependencies{
		Check: &check.Controller{Handle: handle},
		Meal:  mealController.NewController(repo),
		Screen: &screen.Controller{
			Home:       homeService,
			Favourites: favouritesService,
			Tracking:   trackingService,
			Repo:       repo,
		},
	}
	route := router.Router(deps)

	defer func() {

		// 發送 ELK
		var logService logLib.LogService
		logwr := logService.LoggerInit("main")
		logwr.WithFields(logrus.Fields{"task": "main"}).Error("worker shutdown")
		fmt.Println("worker shutdown")
	}()

	var wg sync.WaitGroup
	wg.Add(1)
	go route.Run(fmt.Sprintf(":%d", utils.EnvConfig.Router.Port))

	if conn != nil {
		wg.Add(1)
		go ReminderQueue(conn, handle, reminderService)
	}

	wg.Wait()
}

// ReminderQueue 外部排程器也可以丟訊息到 reminder queue 直接觸發提醒
func ReminderQueue(conn *rabbitmq.Connection, handle *database.Handle, reminderService *reminder.ReminderService) {
	deliveries, err := conn.Consume()
	if err != nil {
		panic(err)
	}

	for q, d := range deliveries {
		go conn.HandleConsumedDeliveries(q, d, func(c rabbitmq.Connection, q string, deliveries <-chan amqp.Delivery) {
			ReminderHandler(handle, reminderService, q, deliveries)
		})
	}
	log.Printf(" [ mealtracker ] [ reminder ] Waiting for messages. To exit press CTRL+C")
}

func ReminderHandler(handle *database.Handle, reminderService *reminder.ReminderService, q string, deliveries <-chan amqp.Delivery) {
	for d := range deliveries {

		trackLog.Info(fmt.Sprintf("Queue[%s] 接受資料: %s\n", q, string(d.Body)), true)

		var reminderQueueParam structs.ReminderQueueParam
		if err := json.Unmarshal(d.Body, &reminderQueueParam); err != nil {
			fmt.Println(err.Error())
			continue
		}
		// 檢查queue是否正確
		if reminderQueueParam.QueueType != "" && reminderQueueParam.QueueType != q {
			trackLog.Error(fmt.Sprintf("[MismatchQueue] task_id: %d, queue: %s, queue_type: %s", reminderQueueParam.TaskID, q, reminderQueueParam.QueueType), true)
			continue
		}
		if reminderQueueParam.IsDie {
			panic(nil)
		}

		_ = insertActivityLog(handle, enums.LogNameReceived, fmt.Sprintf("(%d), queue name: %s, start...", reminderQueueParam.TaskID, q))
		err := reminderService.Run()
		if err != nil {
			trackLog.Error("reminder fail: "+err.Error(), true)
		}
		_ = insertActivityLog(handle, enums.LogNameReminder, map[string]interface{}{"task_id": reminderQueueParam.TaskID, "result": err == nil})
	}
}

// 塞入執行紀錄的 log table
func insertActivityLog(handle *database.Handle, jobname string, data interface{}) error {

	activityLogJSON, _ := json.Marshal(data)

	insertTime := time.Now()
	var activityLogEntity models.ActivityLog
	activityLogEntity.CreatedAt = &insertTime
	activityLogEntity.UpdatedAt = &insertTime
	activityLogEntity.LogName = jobname
	activityLogEntity.Description = "golang-worker log"
	activityLogEntity.Properties = string(activityLogJSON)

	if err := handle.DB.Create(&activityLogEntity).Error; err != nil {
		return err
	}

	return nil
}
