// Package automation binds the print job card plan to concrete step
// executors and provides the sessions they drive.
package automation

import (
	"github.com/bhumika-04/EmailRpaSolution-sub001/internal/classifier"
	"github.com/bhumika-04/EmailRpaSolution-sub001/internal/workflow"
)

const (
	ActionOpenPortal       workflow.Action = "open_portal"
	ActionCompanyLogin     workflow.Action = "company_login"
	ActionUserLogin        workflow.Action = "user_login"
	ActionOpenJobCard      workflow.Action = "open_job_card"
	ActionJobDetails       workflow.Action = "job_details"
	ActionJobSize          workflow.Action = "job_size"
	ActionMaterial         workflow.Action = "material"
	ActionPrintingDetails  workflow.Action = "printing_details"
	ActionWastageFinishing workflow.Action = "wastage_finishing"
	ActionSaveJobCard      workflow.Action = "save_job_card"
)

// PrintJobPlan enters one job card into the print ERP.
var PrintJobPlan = []workflow.StepSpec{
	{Number: 1, Description: "Open the ERP portal", Action: ActionOpenPortal},
	{Number: 2, Description: "Sign in to the company account", Action: ActionCompanyLogin},
	{Number: 3, Description: "Sign in as the operator", Action: ActionUserLogin},
	{Number: 4, Description: "Open a new job card", Action: ActionOpenJobCard},
	{Number: 5, Description: "Enter client and job details", Action: ActionJobDetails},
	{Number: 6, Description: "Enter job size", Action: ActionJobSize},
	{Number: 7, Description: "Enter material", Action: ActionMaterial},
	{Number: 8, Description: "Enter printing details", Action: ActionPrintingDetails},
	{Number: 9, Description: "Enter wastage and finishing", Action: ActionWastageFinishing},
	{Number: 10, Description: "Save the job card", Action: ActionSaveJobCard},
}

// Plans returns the plans for every automated job type.
func Plans() (workflow.Plans, error) {
	plans := workflow.Plans{}
	if err := plans.Add(PrintJobPlan, classifier.LabelPrintJobCard, classifier.LabelJobRequest); err != nil {
		return nil, err
	}
	return plans, nil
}

// Registry returns a registry holding the executor for every action in
// PrintJobPlan. portalURL is used when the request carries no URL.
func Registry(portalURL string) (*workflow.Registry, error) {
	r := workflow.NewRegistry()
	steps := map[workflow.Action]workflow.StepExecutor{
		ActionOpenPortal:       openPortal{fallback: portalURL},
		ActionCompanyLogin:     workflow.StepFunc(companyLogin),
		ActionUserLogin:        workflow.StepFunc(userLogin),
		ActionOpenJobCard:      workflow.StepFunc(openJobCard),
		ActionJobDetails:       workflow.StepFunc(jobDetails),
		ActionJobSize:          workflow.StepFunc(jobSize),
		ActionMaterial:         workflow.StepFunc(material),
		ActionPrintingDetails:  workflow.StepFunc(printingDetails),
		ActionWastageFinishing: workflow.StepFunc(wastageFinishing),
		ActionSaveJobCard:      workflow.StepFunc(saveJobCard),
	}
	for _, spec := range PrintJobPlan {
		if err := r.Register(spec.Action, steps[spec.Action]); err != nil {
			return nil, err
		}
	}
	return r, nil
}
