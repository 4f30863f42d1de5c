package processing

import (
	"context"
	"log"
	"studio/models"
	"time"
)

type processingTask interface {
	getName() string
	shouldHandle(*models.Photo) bool
	process(context.Context, *models.Photo, []byte) int
}

const (
	pendingDelay = 5 * time.Second
	idleDelay    = 30 * time.Second
)

// Init migrates the task table and registers the post-upload tasks
func (p *Processor) Init(previewSize uint) error {
	p.tasks = map[string]processingTask{}
	p.registerTask(&metadata{db: p.DB})
	p.registerTask(&preview{p: p, size: previewSize})
	return p.DB.AutoMigrate(&ProcessingTask{})
}

func (p *Processor) registerTask(t processingTask) {
	p.tasks[t.getName()] = t
}

// processPending runs every registered task not yet recorded for each uploaded photo
// and returns the number of photos it touched
func (p *Processor) processPending(ctx context.Context) int {
	rows, err := p.DB.WithContext(ctx).
		Table("photos").
		Joins("LEFT JOIN processing_tasks ON (photos.id = processing_tasks.photo_id)").
		Select("photos.id, COALESCE(processing_tasks.status, ''), processing_tasks.photo_id").
		Where("photos.size>0 AND "+
			"photos.created_at<? AND "+
			"(processing_tasks.status IS NULL OR "+
			"  LENGTH(processing_tasks.status)-LENGTH(REPLACE(processing_tasks.status, ',', ''))+1 < ?)", time.Now().UTC().Add(-pendingDelay), len(p.tasks)).
		Order("photos.created_at").Rows()
	if err != nil {
		log.Printf("processPending error: %v", err)
		return 0
	}
	type pending struct {
		photoID  uint64
		status   string
		recordID *uint64
	}
	list := []pending{}
	for rows.Next() {
		current := pending{}
		if err = rows.Scan(&current.photoID, &current.status, &current.recordID); err != nil {
			log.Printf("processPending row error: %v", err)
			break
		}
		list = append(list, current)
	}
	rows.Close()

	for _, item := range list {
		if ctx.Err() != nil {
			break
		}
		photo := models.Photo{}
		if err = p.DB.WithContext(ctx).First(&photo, item.photoID).Error; err != nil {
			log.Printf("processPending load photo error: %v", err)
			continue
		}
		current := ProcessingTask{
			PhotoID: photo.ID,
			Status:  item.status,
		}
		statusMap := current.statusToMap()
		var data []byte
		for taskName, task := range p.tasks {
			if _, ok := statusMap[taskName]; ok {
				// One try for each task
				continue
			}
			if !task.shouldHandle(&photo) {
				statusMap[taskName] = Skipped
				continue
			}
			if data == nil {
				if data, err = p.Load(ctx, &photo); err != nil {
					log.Printf("processPending storage error for photo %d: %v", photo.ID, err)
					statusMap[taskName] = FailedStorage
					continue
				}
			}
			start := time.Now()
			statusMap[taskName] = task.process(ctx, &photo, data)
			log.Printf("Task %s, photo: %d, result: %d, time: %v", taskName, photo.ID, statusMap[taskName], time.Since(start).Milliseconds())
		}
		current.updateWith(statusMap)
		if item.recordID == nil {
			err = p.DB.WithContext(ctx).Create(&current).Error
		} else {
			err = p.DB.WithContext(ctx).Save(&current).Error
		}
		if err != nil {
			log.Printf("processPending save task error: %v", err)
		}
	}
	return len(list)
}

// StartProcessing polls for freshly uploaded photos until ctx is done
func (p *Processor) StartProcessing(ctx context.Context) {
	for {
		delay := idleDelay
		if p.processPending(ctx) > 0 {
			delay = pendingDelay
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}
