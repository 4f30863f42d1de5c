package processing

import (
	"log"
	"sort"
	"strconv"
	"strings"
	"studio/models"
)

const (
	Skipped       = 0
	UserSkipped   = 1
	Done          = 2
	Failed        = 3
	FailedStorage = 4
	FailedDB      = 5
)

type ProcessingTask struct {
	PhotoID uint64       `gorm:"primaryKey"`
	Photo   models.Photo `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Status  string       `gorm:"type:varchar(1024)"` // Contains comma-separated pairs of task and status, e.g. "metadata:2,preview:3"
}

func (pt *ProcessingTask) statusToMap() map[string]int {
	result := map[string]int{}
	if pt.Status == "" {
		return result
	}
	for _, v := range strings.Split(pt.Status, ",") {
		current := strings.Split(v, ":")
		if len(current) != 2 {
			log.Printf("Task status contains invalid chars, photo: %d, status: %s", pt.PhotoID, pt.Status)
			continue
		}
		result[current[0]], _ = strconv.Atoi(current[1])
	}
	return result
}

func (pt *ProcessingTask) updateWith(statusMap map[string]int) {
	result := []string{}
	for k, v := range statusMap {
		result = append(result, k+":"+strconv.Itoa(v))
	}
	sort.Strings(result)
	pt.Status = strings.Join(result, ",")
}
