package controllers

import (
	"net/http"

	"hostelswap_server/services"
	"hostelswap_server/utils"

	"github.com/gorilla/mux"
)

type CourseController struct {
	Courses *services.CourseService
}

func (c *CourseController) Create(w http.ResponseWriter, r *http.Request) {
	var input services.CourseInput
	if err := decodeJSON(r, &input); err != nil {
		utils.RespondError(w, err)
		return
	}
	course, err := c.Courses.CreateCourse(r.Context(), currentUser(r), input)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusCreated, course, "Course created")
}

func (c *CourseController) List(w http.ResponseWriter, r *http.Request) {
	courses, err := c.Courses.ListCourses(r.Context())
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, courses, "")
}

func (c *CourseController) Mine(w http.ResponseWriter, r *http.Request) {
	courses, err := c.Courses.ListMine(r.Context(), currentUser(r))
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, courses, "")
}

func (c *CourseController) Enroll(w http.ResponseWriter, r *http.Request) {
	course, err := c.Courses.Enroll(r.Context(), mux.Vars(r)["code"], currentUser(r))
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, course, "Enrolled")
}

func (c *CourseController) Unenroll(w http.ResponseWriter, r *http.Request) {
	course, err := c.Courses.Unenroll(r.Context(), mux.Vars(r)["code"], currentUser(r))
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, course, "Unenrolled")
}

// Members handles GET /api/courses/{code}/members
func (c *CourseController) Members(w http.ResponseWriter, r *http.Request) {
	members, err := c.Courses.Members(r.Context(), mux.Vars(r)["code"])
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, members, "")
}
