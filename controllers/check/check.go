package check

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"mealtracker-go-worker/database"
	"mealtracker-go-worker/services/rabbitmq"
	"mealtracker-go-worker/services/trackLog"

	"github.com/gin-gonic/gin"
)

type AliveResponse struct {
	Success  bool      `json:"success"`
	Messsage string    `json:"message"`
	Info     CheckInfo `json:"info"`
}

type CheckInfo struct {
	Queues     []string `json:"queue"`
	RoutineNum int      `json:"routine_num"`
}

type Controller struct {
	Handle *database.Handle
}

func (ctl *Controller) CheckAlive(c *gin.Context) {
	success := true
	resMsg := "main thread alive"
	checkInfo := CheckInfo{}

	// 檢查資料庫連線
	if err := ctl.Handle.Ping(); err != nil {
		success = false
		resMsg = fmt.Sprintf("database ping fail: %s", err.Error())
		trackLog.Error(resMsg, false)
	}

	rabbitConn := rabbitmq.GetConnection("mealtracker")
	if rabbitConn != nil {
		// 檢查mq連線
		if rabbitConn.Conn == nil {
			resMsg = "Api detect Connection lost, Reconnecting.."
			trackLog.Error(resMsg, false)
			if err := rabbitConn.Reconnect(); err != nil {
				resMsg = fmt.Sprintf("reconnect rabbit fail: %s", err.Error())
				trackLog.Error(resMsg, false)
			}
		}
		//檢查mq channel
		if rabbitConn.Channel != nil {
			for _, q := range rabbitConn.Queues {
				//檢查每一個queue
				queue, queueErr := rabbitConn.Channel.QueueInspect(q)
				if queueErr != nil {
					resMsg = fmt.Sprintf("Queue[%s] error: %s\n", q, queueErr.Error())
					trackLog.Error(resMsg, false)
				} else {
					queueJson, _ := json.Marshal(queue)
					checkInfo.Queues = append(checkInfo.Queues, string(queueJson))
				}
			}
		} else {
			resMsg = "Channel get fail"
			trackLog.Error(resMsg, false)
		}
		// 花1秒檢查是否重連線
		select {
		case err := <-rabbitConn.ApiErr:
			trackLog.Error(fmt.Sprintf("api error: %s\n", err.Error()), false)
			if err := rabbitConn.Reconnect(); err != nil {
				resMsg = fmt.Sprintf("reconnect rabbit fail: %s\n", err.Error())
				trackLog.Error(resMsg, false)
			}
		case <-time.After(time.Second * 1):
		}
	}

	checkInfo.RoutineNum = runtime.NumGoroutine()

	c.JSON(http.StatusOK, AliveResponse{success, resMsg, checkInfo})
	return
}
