package pinnacle

import (
	"path/filepath"
	"sync"
)

// Plan is one Plan_<PlanID> directory of a dataset
type Plan struct {
	Path  string
	Entry Record

	dataset *Dataset

	infoOnce sync.Once
	info     Record
	infoErr  error

	trialsOnce sync.Once
	trials     []Record
	trialsErr  error
}

func newPlan(dataset *Dataset, path string, entry Record) *Plan {
	return &Plan{Path: path, Entry: entry, dataset: dataset}
}

// Dataset returns the dataset the plan belongs to
func (p *Plan) Dataset() *Dataset { return p.dataset }

// PlanInfo returns the plan.PlanInfo record
func (p *Plan) PlanInfo() (Record, error) {
	p.infoOnce.Do(func() {
		path := filepath.Join(p.Path, "plan.PlanInfo")
		p.dataset.logger.Debugf("Reading plan info from: %s", path)
		p.info, p.infoErr = p.dataset.reader.ReadRecord(path)
	})
	return p.info, p.infoErr
}

// Name returns the PlanName field of the plan info
func (p *Plan) Name() (string, error) {
	info, err := p.PlanInfo()
	if err != nil {
		return "", err
	}
	return info.String(filepath.Join(p.Path, "plan.PlanInfo"), "PlanName")
}

// Trials returns the trials stored in plan.Trial
func (p *Plan) Trials() ([]Record, error) {
	p.trialsOnce.Do(func() {
		path := filepath.Join(p.Path, "plan.Trial")
		p.dataset.logger.Debugf("Reading trials from: %s", path)

		record, err := p.dataset.reader.ReadRecord(path)
		if err != nil {
			p.trialsErr = err
			return
		}
		p.trials, p.trialsErr = record.List(path, "Trial")
	})
	return p.trials, p.trialsErr
}
