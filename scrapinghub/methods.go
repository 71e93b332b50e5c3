package scrapinghub

import "sort"

// API method names.
const (
	MethodAddVersion         = "addversion"
	MethodListProjects       = "listprojects"
	MethodSpiders            = "spiders"
	MethodSchedule           = "schedule"
	MethodItems              = "items"
	MethodLog                = "log"
	MethodAsProjectSlybot    = "as_project_slybot"
	MethodAsSpiderProperties = "as_spider_properties"
	MethodJobsList           = "jobs_list"
	MethodJobsCount          = "jobs_count"
	MethodJobsUpdate         = "jobs_update"
	MethodJobsStop           = "jobs_stop"
	MethodJobsDelete         = "jobs_delete"
	MethodEggsAdd            = "eggs_add"
	MethodEggsDelete         = "eggs_delete"
	MethodEggsList           = "eggs_list"
	MethodReportsAdd         = "reports_add"
)

// apiMethods maps method names to endpoint paths relative to the base URL.
var apiMethods = map[string]string{
	MethodAddVersion:         "scrapyd/addversion",
	MethodListProjects:       "scrapyd/listprojects",
	MethodSpiders:            "spiders/list",
	MethodSchedule:           "schedule",
	MethodItems:              "items",
	MethodLog:                "log",
	MethodAsProjectSlybot:    "as/project-slybot",
	MethodAsSpiderProperties: "as/spider-properties",
	MethodJobsList:           "jobs/list",
	MethodJobsCount:          "jobs/count",
	MethodJobsUpdate:         "jobs/update",
	MethodJobsStop:           "jobs/stop",
	MethodJobsDelete:         "jobs/delete",
	MethodEggsAdd:            "eggs/add",
	MethodEggsDelete:         "eggs/delete",
	MethodEggsList:           "eggs/list",
	MethodReportsAdd:         "reports/add",
}

// MethodPath returns the endpoint path of a method name.
func MethodPath(method string) (string, bool) {
	path, ok := apiMethods[method]
	return path, ok
}

// Methods returns the known method names, sorted.
func Methods() []string {
	names := make([]string, 0, len(apiMethods))
	for name := range apiMethods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
