package scheduler

import (
	"github.com/nvak1999/book-store/internal/app/service"
	"github.com/nvak1999/book-store/pkg/logger"
	"github.com/robfig/cron/v3"
)

// CartReconciler periodically sweeps cart rows for books that were
// already ordered. Order placement removes them transactionally, so
// this only catches rows from before that path existed or from manual
// data fixes.
type CartReconciler struct {
	cron        *cron.Cron
	cartService service.CartService
}

func NewCartReconciler(cartService service.CartService) *CartReconciler {
	return &CartReconciler{
		cron:        cron.New(),
		cartService: cartService,
	}
}

func (s *CartReconciler) Start() error {
	// hourly
	_, err := s.cron.AddFunc("0 * * * *", func() {
		logger.Debug("Starting cart reconciliation sweep", nil)

		removed, err := s.cartService.ReconcileOrderedItems()
		if err != nil {
			logger.Error("Cart reconciliation sweep failed", err)
			return
		}

		logger.Debug("Cart reconciliation sweep finished", map[string]interface{}{
			"removed": removed,
		})
	})
	if err != nil {
		logger.Error("Failed to schedule cart reconciliation", err)
		return err
	}

	s.cron.Start()
	logger.Info("Cart reconciler started (hourly)", nil)
	return nil
}

func (s *CartReconciler) Stop() {
	s.cron.Stop()
	logger.Info("Cart reconciler stopped", nil)
}
